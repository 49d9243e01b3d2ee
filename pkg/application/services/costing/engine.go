package costing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// EngineConfig holds configuration for the cost engine
type EngineConfig struct {
	TotalsFormula TotalsFormula
	Logger        *zap.Logger
}

// Engine runs the full pricing pipeline over a budget snapshot:
// partida pricing, tree propagation, budget totals.
// It holds no state between runs.
type Engine struct {
	config EngineConfig
	logger *zap.Logger
}

// NewEngine creates an engine using the tax-only totals formula and no logging
func NewEngine() *Engine {
	return NewEngineWithConfig(EngineConfig{TotalsFormula: TaxOnly})
}

// NewEngineWithConfig creates an engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config: config,
		logger: logger.Named("costing"),
	}
}

// Compute prices every partida, rolls subtotals up the title tree and applies
// the budget's tax and profit percentages.
//
// A partida whose analysis is structurally broken (missing or cyclic nested
// reference) prices at zero and is reported in Failures; the rest of the
// budget still computes. Sub-partidas only count through a nested line in
// their parent's APU; one without such a line is priced but reported too. A broken title tree fails the whole computation.
func (e *Engine) Compute(snapshot *dto.BudgetSnapshot) (*dto.BudgetResult, error) {
	catalog := NewPriceCatalog(snapshot.Budget.ID, snapshot.SharedPrices)
	evaluator := newNestedEvaluator(snapshot, catalog, e.logger)

	result := &dto.BudgetResult{
		BudgetID:      snapshot.Budget.ID,
		PartidaPrices: make(map[entities.PartidaID]dto.PartidaPrice, len(snapshot.Partidas)),
	}

	titles := make(map[entities.TitleID]bool, len(snapshot.Titles))
	for _, t := range snapshot.Titles {
		titles[t.ID] = true
	}

	folded := foldedSubPartidas(snapshot)

	extended := make(map[entities.PartidaID]decimal.Decimal, len(snapshot.Partidas))
	for _, p := range snapshot.Partidas {
		pricing, err := evaluator.price(p.ID)
		if err != nil {
			result.Failures = append(result.Failures, failureFor(p.ID, err))
			result.PartidaPrices[p.ID] = dto.PartidaPrice{
				PartidaID:     p.ID,
				UnitPrice:     decimal.Zero,
				ExtendedPrice: decimal.Zero,
			}
			e.logger.Warn("partida could not be priced",
				zap.String("budget", string(snapshot.Budget.ID)),
				zap.String("partida", string(p.ID)),
				zap.Error(err))
			continue
		}

		ext := pricing.ExtendedPrice(p.Quantity)
		extended[p.ID] = ext
		result.PartidaPrices[p.ID] = dto.PartidaPrice{
			PartidaID:     p.ID,
			UnitPrice:     pricing.UnitPrice,
			ExtendedPrice: ext,
			Lines:         pricing.Lines,
		}

		if p.IsTopLevel() && !titles[p.TitleID] {
			result.Failures = append(result.Failures, dto.PartidaFailure{
				PartidaID: p.ID,
				Reason:    fmt.Sprintf("title %s not found; excluded from subtotals", p.TitleID),
			})
		}

		if !p.IsTopLevel() && !folded[p.ID] {
			result.Failures = append(result.Failures, dto.PartidaFailure{
				PartidaID: p.ID,
				Reason:    fmt.Sprintf("sub-partida is not referenced by a nested line in partida %s; excluded from subtotals", p.ParentID),
			})
		}

		e.logger.Debug("partida priced",
			zap.String("partida", string(p.ID)),
			zap.String("unit_price", pricing.UnitPrice.StringFixed(entities.MoneyPlaces)),
			zap.String("extended_price", ext.StringFixed(entities.MoneyPlaces)))
	}

	subtotals, budgetSubtotal, err := Propagate(snapshot.Titles, snapshot.Partidas, extended)
	if err != nil {
		return nil, fmt.Errorf("failed to propagate subtotals for budget %s: %w", snapshot.Budget.ID, err)
	}

	totals := ComputeTotals(budgetSubtotal, snapshot.Budget.TaxPct, snapshot.Budget.ProfitPct, e.config.TotalsFormula)

	result.TitleSubtotals = subtotals
	result.BudgetSubtotal = totals.Subtotal
	result.Tax = totals.Tax
	result.Profit = totals.Profit
	result.Total = totals.Total
	result.SharedPrices = catalog.Entries()

	e.logger.Debug("budget computed",
		zap.String("budget", string(snapshot.Budget.ID)),
		zap.Int("partidas", len(snapshot.Partidas)),
		zap.Int("failures", len(result.Failures)),
		zap.String("total", totals.Total.StringFixed(entities.MoneyPlaces)))

	return result, nil
}

// failureFor reports the outermost partida/line implicated by a pricing error
func failureFor(id entities.PartidaID, err error) dto.PartidaFailure {
	failure := dto.PartidaFailure{PartidaID: id, Reason: err.Error()}
	var structural *StructuralError
	if errors.As(err, &structural) && structural.PartidaID == id {
		failure.LineID = structural.LineID
	}
	return failure
}

// foldedSubPartidas marks sub-partidas referenced by a nested line of their
// parent partida's APU
func foldedSubPartidas(snapshot *dto.BudgetSnapshot) map[entities.PartidaID]bool {
	parents := make(map[entities.PartidaID]entities.PartidaID, len(snapshot.Partidas))
	for _, p := range snapshot.Partidas {
		if !p.IsTopLevel() {
			parents[p.ID] = p.ParentID
		}
	}

	folded := make(map[entities.PartidaID]bool, len(parents))
	for _, apu := range snapshot.APUs {
		for _, line := range apu.Lines {
			if line.FoldsNested() && parents[line.NestedPartidaID] == apu.PartidaID {
				folded[line.NestedPartidaID] = true
			}
		}
	}
	return folded
}
