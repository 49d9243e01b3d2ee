package costing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// QuantityFromCrew derives an hour quantity: (shift x crew) / yield
func QuantityFromCrew(crew, yield, shift decimal.Decimal) decimal.Decimal {
	if !yield.IsPositive() || !shift.IsPositive() {
		return decimal.Zero
	}
	return entities.TruncQuantity(shift.Mul(crew).Div(yield))
}

// CrewFromQuantity derives a crew size: (quantity x yield) / shift
func CrewFromQuantity(quantity, yield, shift decimal.Decimal) decimal.Decimal {
	if !yield.IsPositive() || !shift.IsPositive() {
		return decimal.Zero
	}
	return entities.TruncQuantity(quantity.Mul(yield).Div(shift))
}

// SyncCrewYield re-derives the quantity of every crew-driven line from its crew size.
// Crew size is the durable input; an unset crew becomes 1.
func SyncCrewYield(apu *entities.APU) {
	for i := range apu.Lines {
		line := &apu.Lines[i]
		if !line.IsCrewDriven() {
			continue
		}
		line.CrewSize = line.EffectiveCrew()
		line.Quantity = QuantityFromCrew(line.CrewSize, apu.Yield, apu.ShiftLength)
	}
}
