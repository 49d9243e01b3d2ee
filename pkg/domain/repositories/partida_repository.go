package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// PartidaPriceUpdate carries the computed caches of one partida
type PartidaPriceUpdate struct {
	PartidaID     entities.PartidaID
	UnitPrice     decimal.Decimal
	ExtendedPrice decimal.Decimal
}

// PartidaRepository provides access to partidas
type PartidaRepository interface {
	GetPartida(ctx context.Context, id entities.PartidaID) (*entities.Partida, error)
	GetPartidas(ctx context.Context, budgetID entities.BudgetID) ([]*entities.Partida, error)
	SavePartida(ctx context.Context, partida *entities.Partida) error

	// UpdatePartidaPrices writes back computed unit and extended prices.
	UpdatePartidaPrices(ctx context.Context, updates []PartidaPriceUpdate) error
}
