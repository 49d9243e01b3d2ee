package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResourceLine_Validation(t *testing.T) {
	line, err := NewResourceLine("L1", Material, "CEM-01", "bol", decimal.RequireFromString("1.23456"), decimal.NewFromInt(25))
	if err != nil {
		t.Fatalf("Expected valid line creation to succeed: %v", err)
	}
	if !line.Quantity.Equal(decimal.RequireFromString("1.2345")) {
		t.Errorf("Expected quantity truncated to 1.2345, got %s", line.Quantity)
	}

	testCases := []struct {
		name        string
		id          LineID
		quantity    decimal.Decimal
		price       decimal.Decimal
		expectError string
	}{
		{"empty id", "", decimal.NewFromInt(1), decimal.NewFromInt(1), "line id cannot be empty"},
		{"negative quantity", "L1", decimal.NewFromInt(-1), decimal.NewFromInt(1), "quantity cannot be negative, got -1"},
		{"negative price", "L1", decimal.NewFromInt(1), decimal.NewFromInt(-2), "price cannot be negative, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewResourceLine(tc.id, Material, "R", "und", tc.quantity, tc.price)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestNewNestedLine(t *testing.T) {
	line, err := NewNestedLine("N1", "P-02", "m3", decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.IsNested() || line.IsDraft() {
		t.Errorf("expected nested, non-draft line: %+v", line)
	}

	if _, err := NewNestedLine("N1", "", "m3", decimal.NewFromInt(1)); err == nil {
		t.Error("expected error for nested line without target")
	}
}

func TestResourceLine_Classification(t *testing.T) {
	tests := []struct {
		name       string
		line       ResourceLine
		crewDriven bool
		laborHour  bool
		percent    bool
		followsCat bool
	}{
		{"labor hh", ResourceLine{Kind: Labor, ResourceID: "OP", Unit: "hh"}, true, true, false, true},
		{"labor HH upper case", ResourceLine{Kind: Labor, ResourceID: "OP", Unit: "HH"}, true, true, false, true},
		{"equipment hm", ResourceLine{Kind: Equipment, ResourceID: "MIX", Unit: "hm"}, true, false, false, true},
		{"equipment hh is not crew driven", ResourceLine{Kind: Equipment, ResourceID: "MIX", Unit: "hh"}, false, true, false, true},
		{"labor hm is not crew driven", ResourceLine{Kind: Labor, ResourceID: "OP", Unit: "hm"}, false, false, false, true},
		{"percent of labor", ResourceLine{Kind: Equipment, ResourceID: "HERR", Unit: "%mo"}, false, false, true, false},
		{"overridden material", ResourceLine{Kind: Material, ResourceID: "ARENA", Unit: "m3", Override: true}, false, false, false, false},
		{"draft row", ResourceLine{Kind: Material, Unit: "m3"}, false, false, false, false},
		{"nested labor-like", ResourceLine{Kind: Labor, NestedPartidaID: "P2", Unit: "hh"}, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.IsCrewDriven(); got != tt.crewDriven {
				t.Errorf("IsCrewDriven() = %v, want %v", got, tt.crewDriven)
			}
			if got := tt.line.IsLaborHour(); got != tt.laborHour {
				t.Errorf("IsLaborHour() = %v, want %v", got, tt.laborHour)
			}
			if got := tt.line.IsPercentOfLabor(); got != tt.percent {
				t.Errorf("IsPercentOfLabor() = %v, want %v", got, tt.percent)
			}
			if got := tt.line.FollowsCatalog(); got != tt.followsCat {
				t.Errorf("FollowsCatalog() = %v, want %v", got, tt.followsCat)
			}
		})
	}
}

func TestResourceLine_FoldsNested(t *testing.T) {
	nested := ResourceLine{Kind: Subcontract, NestedPartidaID: "P2", Unit: "m3"}
	if !nested.FoldsNested() {
		t.Error("nested line should fold its target's price")
	}

	percent := ResourceLine{Kind: Subcontract, NestedPartidaID: "P2", Unit: "%mo"}
	if percent.FoldsNested() {
		t.Error("percent-of-labor line is priced from labor, not from its nested target")
	}

	if (ResourceLine{Kind: Material, ResourceID: "ARENA", Unit: "m3"}).FoldsNested() {
		t.Error("plain resource line does not fold")
	}
}

func TestResourceLine_EffectiveCrew(t *testing.T) {
	if got := (ResourceLine{}).EffectiveCrew(); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected default crew 1, got %s", got)
	}
	if got := (ResourceLine{CrewSize: decimal.RequireFromString("2.5")}).EffectiveCrew(); !got.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected crew 2.5, got %s", got)
	}
}

func TestParseResourceKind(t *testing.T) {
	tests := []struct {
		in   string
		want ResourceKind
	}{
		{"MATERIAL", Material},
		{"mano de obra", Labor},
		{"Equipo", Equipment},
		{"subcontract", Subcontract},
	}
	for _, tt := range tests {
		got, err := ParseResourceKind(tt.in)
		if err != nil {
			t.Fatalf("ParseResourceKind(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseResourceKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseResourceKind("tools"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestAPU_CloneIsDeep(t *testing.T) {
	apu := APU{PartidaID: "P1", Lines: []ResourceLine{{ID: "L1", Price: decimal.NewFromInt(3)}}}
	clone := apu.Clone()
	clone.Lines[0].Price = decimal.NewFromInt(9)

	if !apu.Lines[0].Price.Equal(decimal.NewFromInt(3)) {
		t.Errorf("clone mutated original line price: %s", apu.Lines[0].Price)
	}
	if apu.Line("L1") != 0 || apu.Line("missing") != -1 {
		t.Error("Line lookup returned unexpected index")
	}
}

func TestResourceLine_EffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		line ResourceLine
		want string
	}{
		{"follows price", ResourceLine{ResourceID: "A", Price: decimal.NewFromInt(5), OverridePrice: decimal.NewFromInt(9)}, "5"},
		{"pinned", ResourceLine{ResourceID: "A", Price: decimal.NewFromInt(5), Override: true, OverridePrice: decimal.NewFromInt(9)}, "9"},
		{"percent ignores override", ResourceLine{ResourceID: "A", Unit: "%mo", Price: decimal.NewFromInt(5), Override: true, OverridePrice: decimal.NewFromInt(9)}, "5"},
		{"nested ignores override", ResourceLine{NestedPartidaID: "P", Price: decimal.NewFromInt(5), Override: true, OverridePrice: decimal.NewFromInt(9)}, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.EffectivePrice(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("EffectivePrice() = %s, want %s", got, tt.want)
			}
		})
	}
}
