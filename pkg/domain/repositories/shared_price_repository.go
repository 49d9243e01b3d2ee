package repositories

import (
	"context"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// SharedPriceRepository provides access to the budget-scoped price catalog
type SharedPriceRepository interface {
	GetSharedPrices(ctx context.Context, budgetID entities.BudgetID) ([]*entities.SharedPrice, error)

	// SaveSharedPrices upserts entries by resource within the budget.
	SaveSharedPrices(ctx context.Context, budgetID entities.BudgetID, prices []entities.SharedPrice) error
}

// Store groups every repository a budget computation needs
type Store interface {
	BudgetRepository
	TitleRepository
	PartidaRepository
	APURepository
	SharedPriceRepository
}
