package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// NestedResolver returns the unit price of a partida used as a sub-assembly
type NestedResolver func(target entities.PartidaID) (decimal.Decimal, error)

// pricedAPU is the memoized outcome of pricing one partida's analysis
type pricedAPU struct {
	pricing PartidaPricing
	err     error
}

// nestedEvaluator prices the partidas of one snapshot, recursing into nested
// assemblies. Results are memoized per partida; the evaluation stack doubles
// as the visited set that turns a nesting cycle into a StructuralError.
type nestedEvaluator struct {
	partidas map[entities.PartidaID]*entities.Partida
	apus     map[entities.PartidaID]*entities.APU
	catalog  *PriceCatalog
	logger   *zap.Logger

	memo       map[entities.PartidaID]pricedAPU
	inProgress map[entities.PartidaID]bool
	stack      []entities.PartidaID
}

func newNestedEvaluator(snapshot *dto.BudgetSnapshot, catalog *PriceCatalog, logger *zap.Logger) *nestedEvaluator {
	ev := &nestedEvaluator{
		partidas:   make(map[entities.PartidaID]*entities.Partida, len(snapshot.Partidas)),
		apus:       make(map[entities.PartidaID]*entities.APU, len(snapshot.APUs)),
		catalog:    catalog,
		logger:     logger,
		memo:       make(map[entities.PartidaID]pricedAPU, len(snapshot.Partidas)),
		inProgress: make(map[entities.PartidaID]bool),
	}
	for i := range snapshot.Partidas {
		ev.partidas[snapshot.Partidas[i].ID] = &snapshot.Partidas[i]
	}
	for i := range snapshot.APUs {
		ev.apus[snapshot.APUs[i].PartidaID] = &snapshot.APUs[i]
	}
	return ev
}

// price returns the pricing of a partida's APU, computing it at most once
func (ev *nestedEvaluator) price(id entities.PartidaID) (PartidaPricing, error) {
	if cached, ok := ev.memo[id]; ok {
		return cached.pricing, cached.err
	}

	if ev.inProgress[id] {
		path := append(append([]entities.PartidaID{}, ev.stack...), id)
		return PartidaPricing{}, &StructuralError{PartidaID: id, Path: path, Err: ErrNestedCycle}
	}

	apu, ok := ev.apus[id]
	if !ok {
		// Not analysed yet: priced at zero
		pricing := PartidaPricing{PartidaID: id, UnitPrice: decimal.Zero}
		ev.memo[id] = pricedAPU{pricing: pricing}
		return pricing, nil
	}

	ev.inProgress[id] = true
	ev.stack = append(ev.stack, id)

	pricing, err := PriceAPU(*apu, ev.catalog, ev.ResolveNestedUnitPrice)

	ev.stack = ev.stack[:len(ev.stack)-1]
	delete(ev.inProgress, id)

	if err != nil {
		ev.logger.Debug("APU pricing failed",
			zap.String("partida", string(id)),
			zap.Int("depth", len(ev.stack)),
			zap.Error(err))
	}

	ev.memo[id] = pricedAPU{pricing: pricing, err: err}
	return pricing, err
}

// ResolveNestedUnitPrice returns the unit price of the target partida's APU,
// evaluating it recursively with its own yield, shift and lines
func (ev *nestedEvaluator) ResolveNestedUnitPrice(target entities.PartidaID) (decimal.Decimal, error) {
	if _, ok := ev.partidas[target]; !ok {
		return decimal.Zero, fmt.Errorf("partida %s: %w", target, ErrNestedTargetMissing)
	}
	pricing, err := ev.price(target)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.UnitPrice, nil
}
