package repositories

import (
	"context"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// APURepository provides access to unit price analyses.
// SaveAPU replaces the analysis and all of its lines.
type APURepository interface {
	GetAPU(ctx context.Context, partidaID entities.PartidaID) (*entities.APU, error)
	GetAPUs(ctx context.Context, budgetID entities.BudgetID) ([]*entities.APU, error)
	SaveAPU(ctx context.Context, budgetID entities.BudgetID, apu *entities.APU) error
}
