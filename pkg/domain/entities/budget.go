package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetID identifies a budget (presupuesto)
type BudgetID string

// Budget is the root of a title/partida tree. Tax and profit percentages feed the totals.
type Budget struct {
	ID        BudgetID        `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	TaxPct    decimal.Decimal `json:"tax_pct" yaml:"tax_pct"`
	ProfitPct decimal.Decimal `json:"profit_pct" yaml:"profit_pct"`
}

// NewBudget creates a validated Budget
func NewBudget(id BudgetID, name string, taxPct, profitPct decimal.Decimal) (*Budget, error) {
	if id == "" {
		return nil, fmt.Errorf("budget id cannot be empty")
	}
	if taxPct.IsNegative() {
		return nil, fmt.Errorf("tax percentage cannot be negative, got %s", taxPct)
	}
	if profitPct.IsNegative() {
		return nil, fmt.Errorf("profit percentage cannot be negative, got %s", profitPct)
	}

	return &Budget{
		ID:        id,
		Name:      name,
		TaxPct:    taxPct,
		ProfitPct: profitPct,
	}, nil
}
