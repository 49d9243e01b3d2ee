package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PartidaID identifies a line item
type PartidaID string

// Partida is a budget line item. A non-empty ParentID marks a sub-partida
// decomposing another partida; such partidas are priced inside their parent
// and never summed independently under a title.
//
// UnitPrice and ExtendedPrice are caches of the last computation.
type Partida struct {
	ID            PartidaID       `json:"id" yaml:"id"`
	BudgetID      BudgetID        `json:"budget_id" yaml:"budget_id"`
	TitleID       TitleID         `json:"title_id" yaml:"title_id"`
	ParentID      PartidaID       `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Code          string          `json:"code,omitempty" yaml:"code,omitempty"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	Unit          string          `json:"unit" yaml:"unit"`
	Quantity      decimal.Decimal `json:"quantity" yaml:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	ExtendedPrice decimal.Decimal `json:"extended_price" yaml:"extended_price"`
}

// IsTopLevel reports whether the partida is summed directly under its title
func (p Partida) IsTopLevel() bool {
	return p.ParentID == ""
}

// NewPartida creates a validated Partida
func NewPartida(id PartidaID, budgetID BudgetID, titleID TitleID, parentID PartidaID, unit string, quantity decimal.Decimal) (*Partida, error) {
	if id == "" {
		return nil, fmt.Errorf("partida id cannot be empty")
	}
	if titleID == "" {
		return nil, fmt.Errorf("partida %s must belong to a title", id)
	}
	if id == parentID {
		return nil, fmt.Errorf("partida cannot be its own parent: %s", id)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &Partida{
		ID:       id,
		BudgetID: budgetID,
		TitleID:  titleID,
		ParentID: parentID,
		Unit:     unit,
		Quantity: TruncQuantity(quantity),
	}, nil
}
