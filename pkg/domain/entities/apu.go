package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ResourceID identifies a catalog resource (material, worker category, machine, subcontract)
type ResourceID string

// LineID identifies a resource line inside an APU
type LineID string

// ResourceKind classifies a resource line
type ResourceKind int

const (
	Material ResourceKind = iota
	Labor
	Equipment
	Subcontract
)

// String method for ResourceKind enum
func (k ResourceKind) String() string {
	switch k {
	case Material:
		return "MATERIAL"
	case Labor:
		return "LABOR"
	case Equipment:
		return "EQUIPMENT"
	case Subcontract:
		return "SUBCONTRACT"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by its canonical name
func (k ResourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a canonical or Spanish kind name
func (k *ResourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseResourceKind accepts the canonical names and the Spanish catalog names
func ParseResourceKind(s string) (ResourceKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MATERIAL", "MATERIALES":
		return Material, nil
	case "LABOR", "MANO DE OBRA", "MANO_DE_OBRA":
		return Labor, nil
	case "EQUIPMENT", "EQUIPO", "EQUIPOS":
		return Equipment, nil
	case "SUBCONTRACT", "SUBCONTRATO", "SUBCONTRATOS":
		return Subcontract, nil
	default:
		return Material, fmt.Errorf("invalid resource kind: %s (expected MATERIAL, LABOR, EQUIPMENT or SUBCONTRACT)", s)
	}
}

// Units with special pricing semantics
const (
	UnitLaborHour      = "hh"
	UnitMachineHour    = "hm"
	UnitPercentOfLabor = "%mo"
)

func unitIs(unit, want string) bool {
	return strings.EqualFold(strings.TrimSpace(unit), want)
}

// ResourceLine is one row of an APU. A line either references a catalog resource
// (ResourceID) or another partida priced as a nested assembly (NestedPartidaID).
type ResourceLine struct {
	ID              LineID          `json:"id" yaml:"id"`
	Kind            ResourceKind    `json:"kind" yaml:"kind"`
	ResourceID      ResourceID      `json:"resource_id,omitempty" yaml:"resource_id,omitempty"`
	NestedPartidaID PartidaID       `json:"nested_partida_id,omitempty" yaml:"nested_partida_id,omitempty"`
	Unit            string          `json:"unit" yaml:"unit"`
	Quantity        decimal.Decimal `json:"quantity" yaml:"quantity"`
	CrewSize        decimal.Decimal `json:"crew_size" yaml:"crew_size"`
	WastePct        decimal.Decimal `json:"waste_pct" yaml:"waste_pct"`
	Price           decimal.Decimal `json:"price" yaml:"price"`
	Override        bool            `json:"override,omitempty" yaml:"override,omitempty"`
	OverridePrice   decimal.Decimal `json:"override_price" yaml:"override_price"`
	Parcial         decimal.Decimal `json:"parcial" yaml:"parcial"`
}

// IsNested reports whether the line prices another partida's APU
func (l ResourceLine) IsNested() bool {
	return l.NestedPartidaID != ""
}

// FoldsNested reports whether the line's price is its nested partida's unit
// price. A "%mo" line keeps its reference but is priced from labor.
func (l ResourceLine) FoldsNested() bool {
	return l.IsNested() && !l.IsPercentOfLabor()
}

// IsDraft reports whether the line is an incomplete row with nothing to price
func (l ResourceLine) IsDraft() bool {
	return l.ResourceID == "" && !l.IsNested()
}

// IsLaborHour reports whether the line's unit is "hh"
func (l ResourceLine) IsLaborHour() bool {
	return unitIs(l.Unit, UnitLaborHour)
}

// IsPercentOfLabor reports whether the line's unit is "%mo"
func (l ResourceLine) IsPercentOfLabor() bool {
	return unitIs(l.Unit, UnitPercentOfLabor)
}

// IsCrewDriven reports whether quantity and crew size are derived from each other
// through yield and shift length
func (l ResourceLine) IsCrewDriven() bool {
	if l.IsNested() {
		return false
	}
	return (l.Kind == Labor && unitIs(l.Unit, UnitLaborHour)) ||
		(l.Kind == Equipment && unitIs(l.Unit, UnitMachineHour))
}

// FollowsCatalog reports whether the line reads and writes the shared price catalog
func (l ResourceLine) FollowsCatalog() bool {
	return !l.Override && !l.IsNested() && !l.IsDraft() && !l.IsPercentOfLabor()
}

// EffectivePrice returns the pinned override price when the line is overridden,
// otherwise the line's price. Derived lines (nested, "%mo") ignore overrides.
func (l ResourceLine) EffectivePrice() decimal.Decimal {
	if l.Override && !l.IsNested() && !l.IsPercentOfLabor() {
		return l.OverridePrice
	}
	return l.Price
}

// EffectiveCrew returns the crew size, defaulting to 1 when unset
func (l ResourceLine) EffectiveCrew() decimal.Decimal {
	if !l.CrewSize.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return l.CrewSize
}

// NewResourceLine creates a validated catalog-resource line
func NewResourceLine(id LineID, kind ResourceKind, resourceID ResourceID, unit string, quantity, price decimal.Decimal) (*ResourceLine, error) {
	if id == "" {
		return nil, fmt.Errorf("line id cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative, got %s", price)
	}

	return &ResourceLine{
		ID:         id,
		Kind:       kind,
		ResourceID: resourceID,
		Unit:       unit,
		Quantity:   TruncQuantity(quantity),
		Price:      price,
	}, nil
}

// NewNestedLine creates a line that prices another partida as a sub-assembly
func NewNestedLine(id LineID, target PartidaID, unit string, quantity decimal.Decimal) (*ResourceLine, error) {
	if id == "" {
		return nil, fmt.Errorf("line id cannot be empty")
	}
	if target == "" {
		return nil, fmt.Errorf("nested line %s must reference a partida", id)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &ResourceLine{
		ID:              id,
		Kind:            Subcontract,
		NestedPartidaID: target,
		Unit:            unit,
		Quantity:        TruncQuantity(quantity),
	}, nil
}

// APU is the unit price analysis of one partida
type APU struct {
	PartidaID   PartidaID       `json:"partida_id" yaml:"partida_id"`
	Yield       decimal.Decimal `json:"yield" yaml:"yield"`
	ShiftLength decimal.Decimal `json:"shift_length" yaml:"shift_length"`
	Lines       []ResourceLine  `json:"lines" yaml:"lines"`
}

// HasProductionBasis reports whether yield and shift length allow crew-driven formulas
func (a APU) HasProductionBasis() bool {
	return a.Yield.IsPositive() && a.ShiftLength.IsPositive()
}

// Line returns the index of the line with the given id, or -1
func (a APU) Line(id LineID) int {
	for i := range a.Lines {
		if a.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the APU
func (a APU) Clone() APU {
	out := a
	out.Lines = make([]ResourceLine, len(a.Lines))
	copy(out.Lines, a.Lines)
	return out
}
