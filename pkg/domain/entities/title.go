package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TitleID identifies a title (heading) in a budget tree
type TitleID string

// Title is a structural heading. An empty ParentID marks a root title.
// Subtotal is written by tree propagation only.
type Title struct {
	ID       TitleID         `json:"id" yaml:"id"`
	BudgetID BudgetID        `json:"budget_id" yaml:"budget_id"`
	ParentID TitleID         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Order    int             `json:"order" yaml:"order"`
	Name     string          `json:"name" yaml:"name"`
	Subtotal decimal.Decimal `json:"subtotal" yaml:"subtotal"`
}

// IsRoot reports whether the title has no parent
func (t Title) IsRoot() bool {
	return t.ParentID == ""
}

// NewTitle creates a validated Title
func NewTitle(id TitleID, budgetID BudgetID, parentID TitleID, order int, name string) (*Title, error) {
	if id == "" {
		return nil, fmt.Errorf("title id cannot be empty")
	}
	if budgetID == "" {
		return nil, fmt.Errorf("budget id cannot be empty")
	}
	if id == parentID {
		return nil, fmt.Errorf("title cannot be its own parent: %s", id)
	}

	return &Title{
		ID:       id,
		BudgetID: budgetID,
		ParentID: parentID,
		Order:    order,
		Name:     name,
	}, nil
}
