package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// TitleRepository provides access to the title tree of a budget
type TitleRepository interface {
	GetTitles(ctx context.Context, budgetID entities.BudgetID) ([]*entities.Title, error)
	SaveTitle(ctx context.Context, title *entities.Title) error

	// UpdateTitleSubtotals writes back computed subtotals; other fields are untouched.
	UpdateTitleSubtotals(ctx context.Context, budgetID entities.BudgetID, subtotals map[entities.TitleID]decimal.Decimal) error
}
