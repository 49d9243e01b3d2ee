// Package costing computes unit prices, extended prices, title subtotals and
// budget totals from an in-memory budget snapshot.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// LineContext carries the APU-level values some line formulas depend on
type LineContext struct {
	Yield             decimal.Decimal
	ShiftLength       decimal.Decimal
	LaborHourSubtotal decimal.Decimal
}

// ContextFor returns the production basis of an APU with an empty labor subtotal
func ContextFor(apu entities.APU) LineContext {
	return LineContext{Yield: apu.Yield, ShiftLength: apu.ShiftLength}
}

// ComputeLineCost returns the parcial of one resource line, rounded to cents.
//
// "%mo" lines are priced as a percentage of the labor-hour subtotal regardless
// of kind, even when they also reference a nested partida. Draft rows cost nothing.
func ComputeLineCost(line entities.ResourceLine, lc LineContext) decimal.Decimal {
	if line.IsDraft() {
		return decimal.Zero
	}
	if line.IsPercentOfLabor() {
		return entities.RoundMoney(lc.LaborHourSubtotal.Mul(entities.Percent(line.Quantity)))
	}
	if line.IsNested() {
		return entities.RoundMoney(line.Quantity.Mul(line.Price))
	}

	price := line.EffectivePrice()

	switch line.Kind {
	case entities.Material:
		waste := decimal.NewFromInt(1).Add(entities.Percent(line.WastePct))
		return entities.RoundMoney(line.Quantity.Mul(waste).Mul(price))
	case entities.Labor, entities.Equipment:
		if line.IsCrewDriven() {
			return hourlyCost(line.EffectiveCrew(), price, lc)
		}
	}

	return entities.RoundMoney(line.Quantity.Mul(price))
}

// hourlyCost is (1/yield) x shift x crew x price, zero without a production basis
func hourlyCost(crew, price decimal.Decimal, lc LineContext) decimal.Decimal {
	if !lc.Yield.IsPositive() || !lc.ShiftLength.IsPositive() {
		return decimal.Zero
	}
	return entities.RoundMoney(lc.ShiftLength.Mul(crew).Mul(price).Div(lc.Yield))
}
