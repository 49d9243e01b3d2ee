package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// LineRef addresses one resource line within a budget
type LineRef struct {
	PartidaID entities.PartidaID `json:"partida_id"`
	LineID    entities.LineID    `json:"line_id"`
}

func (r LineRef) String() string {
	return fmt.Sprintf("%s/%s", r.PartidaID, r.LineID)
}

// locate returns pointers to the APU and line addressed by ref within snapshot
func locate(snapshot *dto.BudgetSnapshot, ref LineRef) (*entities.APU, *entities.ResourceLine, error) {
	idx := snapshot.APUIndex(ref.PartidaID)
	if idx < 0 {
		return nil, nil, fmt.Errorf("partida %s: %w", ref.PartidaID, ErrAPUNotFound)
	}
	apu := &snapshot.APUs[idx]
	li := apu.Line(ref.LineID)
	if li < 0 {
		return nil, nil, fmt.Errorf("line %s: %w", ref, ErrLineNotFound)
	}
	return apu, &apu.Lines[li], nil
}

// EditLinePrice sets the price of a line and returns the edited snapshot with
// every line whose price changed.
//
// An overridden line only updates its pinned price. Otherwise the shared
// catalog entry is written and the new price is broadcast to every
// non-overridden line of the same resource anywhere in the budget.
// "%mo" and nested lines have derived prices and reject the edit.
func EditLinePrice(snapshot *dto.BudgetSnapshot, ref LineRef, price decimal.Decimal) (*dto.BudgetSnapshot, []LineRef, error) {
	if price.IsNegative() {
		return nil, nil, fmt.Errorf("price %s: %w", price, ErrNegativeValue)
	}

	out := snapshot.Clone()
	_, line, err := locate(out, ref)
	if err != nil {
		return nil, nil, err
	}
	if line.IsNested() || line.IsPercentOfLabor() {
		return nil, nil, fmt.Errorf("line %s: %w", ref, ErrDerivedPrice)
	}
	if line.IsDraft() {
		line.Price = price
		return out, []LineRef{ref}, nil
	}
	if line.Override {
		line.OverridePrice = price
		return out, []LineRef{ref}, nil
	}

	resource := line.ResourceID
	catalog := NewPriceCatalog(out.Budget.ID, out.SharedPrices)
	catalog.Set(resource, price)
	out.SharedPrices = catalog.Entries()

	var changed []LineRef
	for i := range out.APUs {
		apu := &out.APUs[i]
		for j := range apu.Lines {
			l := &apu.Lines[j]
			if l.ResourceID != resource || !l.FollowsCatalog() {
				continue
			}
			l.Price = price
			changed = append(changed, LineRef{PartidaID: apu.PartidaID, LineID: l.ID})
		}
	}

	return out, changed, nil
}

// SetLineOverride pins a line to its own price or releases it back to the
// shared catalog. A released line takes the catalog price, seeding the
// catalog with its last price when the resource has no entry.
func SetLineOverride(snapshot *dto.BudgetSnapshot, ref LineRef, override bool, price decimal.Decimal) (*dto.BudgetSnapshot, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("price %s: %w", price, ErrNegativeValue)
	}

	out := snapshot.Clone()
	_, line, err := locate(out, ref)
	if err != nil {
		return nil, err
	}
	if line.IsNested() || line.IsPercentOfLabor() {
		return nil, fmt.Errorf("line %s: %w", ref, ErrDerivedPrice)
	}

	if override {
		line.Override = true
		line.OverridePrice = price
		return out, nil
	}

	line.Override = false
	line.OverridePrice = decimal.Zero
	catalog := NewPriceCatalog(out.Budget.ID, out.SharedPrices)
	catalog.Resolve(line)
	out.SharedPrices = catalog.Entries()
	return out, nil
}

// EditLineCrew sets the crew size of an "hh"/"hm" line and re-derives its quantity
func EditLineCrew(snapshot *dto.BudgetSnapshot, ref LineRef, crew decimal.Decimal) (*dto.BudgetSnapshot, error) {
	if crew.IsNegative() {
		return nil, fmt.Errorf("crew size %s: %w", crew, ErrNegativeValue)
	}

	out := snapshot.Clone()
	apu, line, err := locate(out, ref)
	if err != nil {
		return nil, err
	}
	if !line.IsCrewDriven() {
		return nil, fmt.Errorf("line %s: %w", ref, ErrNotCrewDriven)
	}

	line.CrewSize = entities.TruncQuantity(crew)
	line.Quantity = QuantityFromCrew(line.CrewSize, apu.Yield, apu.ShiftLength)
	return out, nil
}

// EditLineQuantity sets the quantity of a line. On "hh"/"hm" lines the crew
// size is re-derived from the new quantity.
func EditLineQuantity(snapshot *dto.BudgetSnapshot, ref LineRef, quantity decimal.Decimal) (*dto.BudgetSnapshot, error) {
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity %s: %w", quantity, ErrNegativeValue)
	}

	out := snapshot.Clone()
	apu, line, err := locate(out, ref)
	if err != nil {
		return nil, err
	}

	line.Quantity = entities.TruncQuantity(quantity)
	if line.IsCrewDriven() {
		line.CrewSize = CrewFromQuantity(line.Quantity, apu.Yield, apu.ShiftLength)
	}
	return out, nil
}

// EditYieldShift sets an APU's yield and shift length and re-derives the
// quantity of every crew-driven line from its crew size
func EditYieldShift(snapshot *dto.BudgetSnapshot, partidaID entities.PartidaID, yield, shift decimal.Decimal) (*dto.BudgetSnapshot, error) {
	if yield.IsNegative() || shift.IsNegative() {
		return nil, fmt.Errorf("yield %s, shift %s: %w", yield, shift, ErrNegativeValue)
	}

	out := snapshot.Clone()
	idx := out.APUIndex(partidaID)
	if idx < 0 {
		return nil, fmt.Errorf("partida %s: %w", partidaID, ErrAPUNotFound)
	}

	apu := &out.APUs[idx]
	apu.Yield = yield
	apu.ShiftLength = shift
	SyncCrewYield(apu)
	return out, nil
}
