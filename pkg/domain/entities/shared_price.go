package entities

import "github.com/shopspring/decimal"

// PriceID identifies a shared price entry within one budget
type PriceID string

// SharedPrice is the budget-scoped price of a resource, used by every
// non-overridden line referencing that resource
type SharedPrice struct {
	ID         PriceID         `json:"id" yaml:"id"`
	BudgetID   BudgetID        `json:"budget_id" yaml:"budget_id"`
	ResourceID ResourceID      `json:"resource_id" yaml:"resource_id"`
	Price      decimal.Decimal `json:"price" yaml:"price"`
}
