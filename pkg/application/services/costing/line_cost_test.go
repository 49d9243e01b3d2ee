package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func TestComputeLineCost(t *testing.T) {
	basis := LineContext{Yield: d("1"), ShiftLength: d("8")}

	overridden := material("o", "ARENA", "1", "0", "5")
	overridden.Override = true
	overridden.OverridePrice = d("7")

	laborOtherUnit := subcontract("j", "CAPATAZ", "2", "100")
	laborOtherUnit.Kind = entities.Labor
	laborOtherUnit.Unit = "jor"

	nested := nestedLine("n", "P9", "2")
	nested.Price = d("261")

	nestedPercent := nestedLine("n", "P9", "10")
	nestedPercent.Unit = "%mo"
	nestedPercent.Price = d("640")

	tests := []struct {
		name string
		line entities.ResourceLine
		lc   LineContext
		want string
	}{
		{"material with waste", material("m", "CEMENTO", "10", "5", "2.00"), basis, "21.00"},
		{"material without waste", material("m", "ARENA", "0.35", "0", "45.50"), basis, "15.93"},
		{"overridden material uses pinned price", overridden, basis, "7"},
		{"labor hh", laborHH("l", "OPERARIO", "2", "15.00"), basis, "240.00"},
		{"labor hh rounds to cents", laborHH("l", "OPERARIO", "1", "10"), LineContext{Yield: d("3"), ShiftLength: d("8")}, "26.67"},
		{"labor hh with zero yield", laborHH("l", "OPERARIO", "2", "15"), LineContext{ShiftLength: d("8")}, "0"},
		{"labor hh with zero shift", laborHH("l", "OPERARIO", "2", "15"), LineContext{Yield: d("1")}, "0"},
		{"equipment hm defaults crew to 1", equipmentHM("e", "MEZCLADORA", "0", "10"), LineContext{Yield: d("4"), ShiftLength: d("8")}, "20"},
		{"percent of labor", percentOfLabor("p", "HERRAMIENTAS", "10"), LineContext{LaborHourSubtotal: d("640")}, "64"},
		{"percent of labor on a labor line", func() entities.ResourceLine {
			l := percentOfLabor("p", "SEGURO", "3")
			l.Kind = entities.Labor
			return l
		}(), LineContext{LaborHourSubtotal: d("333.33")}, "10"},
		{"subcontract", subcontract("s", "PINTURA", "3", "12.5"), basis, "37.5"},
		{"labor with a non-hour unit", laborOtherUnit, basis, "200"},
		{"nested assembly", nested, basis, "522"},
		{"percent of labor wins over nesting", nestedPercent, LineContext{Yield: d("1"), ShiftLength: d("8"), LaborHourSubtotal: d("640")}, "64"},
		{"draft row", entities.ResourceLine{ID: "x", Kind: entities.Material, Quantity: d("4"), Price: d("4")}, basis, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineCost(tt.line, tt.lc)
			assert.Truef(t, got.Equal(d(tt.want)), "ComputeLineCost() = %s, want %s", got, tt.want)
		})
	}
}
