package costing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// TotalsFormula selects how tax and profit combine into the budget total
type TotalsFormula int

const (
	// TaxOnly adds tax to the subtotal; profit is reported but not added
	TaxOnly TotalsFormula = iota
	// TaxAndProfit adds both tax and profit to the subtotal
	TaxAndProfit
)

func (f TotalsFormula) String() string {
	switch f {
	case TaxOnly:
		return "tax_only"
	case TaxAndProfit:
		return "tax_and_profit"
	default:
		return "Unknown"
	}
}

// ParseTotalsFormula parses "tax_only" or "tax_and_profit"
func ParseTotalsFormula(s string) (TotalsFormula, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tax_only":
		return TaxOnly, nil
	case "tax_and_profit":
		return TaxAndProfit, nil
	default:
		return TaxOnly, fmt.Errorf("invalid totals formula: %s (expected tax_only or tax_and_profit)", s)
	}
}

// Totals is the final roll-up of a budget
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Profit   decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals applies tax and profit percentages to the budget subtotal.
// Both are computed on the subtotal.
func ComputeTotals(subtotal, taxPct, profitPct decimal.Decimal, formula TotalsFormula) Totals {
	tax := entities.RoundMoney(subtotal.Mul(entities.Percent(taxPct)))
	profit := entities.RoundMoney(subtotal.Mul(entities.Percent(profitPct)))

	total := subtotal.Add(tax)
	if formula == TaxAndProfit {
		total = total.Add(profit)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Profit:   profit,
		Total:    entities.RoundMoney(total),
	}
}
