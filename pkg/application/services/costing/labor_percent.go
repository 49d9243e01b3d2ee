package costing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// LaborHourSubtotal sums the parciales of every "hh" line of the APU.
// Nested, draft and "%mo" lines never contribute.
func LaborHourSubtotal(apu entities.APU) decimal.Decimal {
	lc := ContextFor(apu)
	total := decimal.Zero
	for _, line := range apu.Lines {
		if !line.IsLaborHour() || line.IsNested() || line.IsDraft() {
			continue
		}
		total = total.Add(ComputeLineCost(line, lc))
	}
	return entities.RoundMoney(total)
}

// ResolvePercentOfLabor overwrites the price of every "%mo" line with the
// labor-hour subtotal and returns that subtotal
func ResolvePercentOfLabor(apu *entities.APU) decimal.Decimal {
	subtotal := LaborHourSubtotal(*apu)
	for i := range apu.Lines {
		if apu.Lines[i].IsPercentOfLabor() {
			apu.Lines[i].Price = subtotal
		}
	}
	return subtotal
}
