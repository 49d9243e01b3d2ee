package repositories

import (
	"context"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// BudgetRepository provides access to budget headers
type BudgetRepository interface {
	GetBudget(ctx context.Context, id entities.BudgetID) (*entities.Budget, error)
	ListBudgets(ctx context.Context) ([]*entities.Budget, error)
	SaveBudget(ctx context.Context, budget *entities.Budget) error
}
