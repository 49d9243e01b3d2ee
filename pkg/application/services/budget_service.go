// Package services wires the costing engine to storage and events.
package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/application/services/costing"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
	domainservices "github.com/vsinha/presupuesto/pkg/domain/services"
	"github.com/vsinha/presupuesto/pkg/infrastructure/events"
)

// BudgetServiceConfig holds the collaborators of a BudgetService
type BudgetServiceConfig struct {
	Engine    costing.EngineConfig
	Publisher events.Publisher
	Logger    *zap.Logger
}

// BudgetService loads budgets from a store, prices them and writes the
// computed caches back. Edits go through the same path: load, edit, save,
// recompute.
type BudgetService struct {
	store     repositories.Store
	engine    *costing.Engine
	validator *domainservices.NestingValidator
	publisher events.Publisher
	logger    *zap.Logger
}

// NewBudgetService creates a budget service with the default engine and no events
func NewBudgetService(store repositories.Store) *BudgetService {
	return NewBudgetServiceWithConfig(store, BudgetServiceConfig{})
}

// NewBudgetServiceWithConfig creates a budget service with custom configuration
func NewBudgetServiceWithConfig(store repositories.Store, config BudgetServiceConfig) *BudgetService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engineConfig := config.Engine
	if engineConfig.Logger == nil {
		engineConfig.Logger = logger
	}
	return &BudgetService{
		store:     store,
		engine:    costing.NewEngineWithConfig(engineConfig),
		validator: domainservices.NewNestingValidator(),
		publisher: config.Publisher,
		logger:    logger.Named("budget"),
	}
}

// ListBudgets returns every stored budget header
func (s *BudgetService) ListBudgets(ctx context.Context) ([]*entities.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// LoadSnapshot reads every record of a budget
func (s *BudgetService) LoadSnapshot(ctx context.Context, budgetID entities.BudgetID) (*dto.BudgetSnapshot, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	titles, err := s.store.GetTitles(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load titles: %w", err)
	}
	partidas, err := s.store.GetPartidas(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load partidas: %w", err)
	}
	apus, err := s.store.GetAPUs(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load APUs: %w", err)
	}
	prices, err := s.store.GetSharedPrices(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared prices: %w", err)
	}

	snapshot := &dto.BudgetSnapshot{
		Budget:       *budget,
		Titles:       make([]entities.Title, 0, len(titles)),
		Partidas:     make([]entities.Partida, 0, len(partidas)),
		APUs:         make([]entities.APU, 0, len(apus)),
		SharedPrices: make([]entities.SharedPrice, 0, len(prices)),
	}
	for _, t := range titles {
		snapshot.Titles = append(snapshot.Titles, *t)
	}
	for _, p := range partidas {
		snapshot.Partidas = append(snapshot.Partidas, *p)
	}
	for _, a := range apus {
		snapshot.APUs = append(snapshot.APUs, *a)
	}
	for _, p := range prices {
		snapshot.SharedPrices = append(snapshot.SharedPrices, *p)
	}
	return snapshot, nil
}

// Validate reports structural problems of a stored budget without pricing it
func (s *BudgetService) Validate(ctx context.Context, budgetID entities.BudgetID) (*domainservices.ValidationResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(snapshot.Titles, snapshot.Partidas, snapshot.APUs), nil
}

// Preview prices a stored budget without writing anything back
func (s *BudgetService) Preview(ctx context.Context, budgetID entities.BudgetID) (*dto.BudgetResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return s.ComputeSnapshot(snapshot)
}

// ComputeSnapshot validates and prices an in-memory snapshot
func (s *BudgetService) ComputeSnapshot(snapshot *dto.BudgetSnapshot) (*dto.BudgetResult, error) {
	validation := s.validator.Validate(snapshot.Titles, snapshot.Partidas, snapshot.APUs)
	if !validation.Valid() {
		s.logger.Warn("budget has structural problems",
			zap.String("budget", string(snapshot.Budget.ID)),
			zap.Strings("errors", validation.Errors))
	}
	return s.engine.Compute(snapshot)
}

// Compute prices a stored budget and persists unit prices, extended prices,
// title subtotals, priced lines and the shared catalog
func (s *BudgetService) Compute(ctx context.Context, budgetID entities.BudgetID) (*dto.BudgetResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return s.computeAndPersist(ctx, snapshot)
}

func (s *BudgetService) computeAndPersist(ctx context.Context, snapshot *dto.BudgetSnapshot) (*dto.BudgetResult, error) {
	result, err := s.ComputeSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, snapshot, result); err != nil {
		return nil, fmt.Errorf("failed to persist budget %s: %w", snapshot.Budget.ID, err)
	}

	for _, f := range result.Failures {
		s.publish(events.NewPartidaPricingFailedEvent(snapshot.Budget.ID, f.PartidaID, f.LineID, f.Reason))
	}
	s.publish(events.NewBudgetRecomputedEvent(snapshot.Budget.ID, result.BudgetSubtotal, result.Total, len(result.Failures)))

	s.logger.Info("budget computed",
		zap.String("budget", string(snapshot.Budget.ID)),
		zap.String("subtotal", result.BudgetSubtotal.StringFixed(entities.MoneyPlaces)),
		zap.String("total", result.Total.StringFixed(entities.MoneyPlaces)),
		zap.Int("failures", len(result.Failures)))

	return result, nil
}

func (s *BudgetService) persist(ctx context.Context, snapshot *dto.BudgetSnapshot, result *dto.BudgetResult) error {
	updates := make([]repositories.PartidaPriceUpdate, 0, len(snapshot.Partidas))
	for _, p := range snapshot.Partidas {
		price := result.PartidaPrices[p.ID]
		updates = append(updates, repositories.PartidaPriceUpdate{
			PartidaID:     p.ID,
			UnitPrice:     price.UnitPrice,
			ExtendedPrice: price.ExtendedPrice,
		})
	}
	if err := s.store.UpdatePartidaPrices(ctx, updates); err != nil {
		return err
	}

	if err := s.store.UpdateTitleSubtotals(ctx, snapshot.Budget.ID, result.TitleSubtotals); err != nil {
		return err
	}

	// Priced lines carry derived quantities, resolved prices and parciales
	for _, apu := range snapshot.APUs {
		price, ok := result.PartidaPrices[apu.PartidaID]
		if !ok || price.Lines == nil {
			continue
		}
		priced := apu
		priced.Lines = price.Lines
		if err := s.store.SaveAPU(ctx, snapshot.Budget.ID, &priced); err != nil {
			return err
		}
	}

	return s.store.SaveSharedPrices(ctx, snapshot.Budget.ID, result.SharedPrices)
}

// EditResult is the outcome of an edit: the recomputed budget and the lines
// whose price changed
type EditResult struct {
	Budget  *dto.BudgetResult `json:"budget"`
	Changed []costing.LineRef `json:"changed_lines,omitempty"`
}

// EditLinePrice sets a line price, broadcasting it through the shared catalog
func (s *BudgetService) EditLinePrice(ctx context.Context, budgetID entities.BudgetID, ref costing.LineRef, price decimal.Decimal) (*EditResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	edited, changed, err := costing.EditLinePrice(snapshot, ref, price)
	if err != nil {
		return nil, err
	}

	if err := s.saveChanged(ctx, edited, changed); err != nil {
		return nil, err
	}
	if err := s.store.SaveSharedPrices(ctx, budgetID, edited.SharedPrices); err != nil {
		return nil, fmt.Errorf("failed to save shared prices: %w", err)
	}

	s.publish(events.NewLineEditedEvent(budgetID, address(ref), "price", price.String()))
	if _, line := findLine(edited, ref); line != nil && line.FollowsCatalog() {
		addrs := make([]events.LineAddress, 0, len(changed))
		for _, c := range changed {
			addrs = append(addrs, address(c))
		}
		s.publish(events.NewPriceSynchronizedEvent(budgetID, line.ResourceID, price, addrs))
	}

	result, err := s.computeAndPersist(ctx, edited)
	if err != nil {
		return nil, err
	}
	return &EditResult{Budget: result, Changed: changed}, nil
}

// SetLineOverride pins a line to its own price or releases it to the catalog
func (s *BudgetService) SetLineOverride(ctx context.Context, budgetID entities.BudgetID, ref costing.LineRef, override bool, price decimal.Decimal) (*EditResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	edited, err := costing.SetLineOverride(snapshot, ref, override, price)
	if err != nil {
		return nil, err
	}
	return s.finishLineEdit(ctx, edited, ref, "override", fmt.Sprintf("%t:%s", override, price))
}

// EditLineCrew sets the crew size of an "hh"/"hm" line
func (s *BudgetService) EditLineCrew(ctx context.Context, budgetID entities.BudgetID, ref costing.LineRef, crew decimal.Decimal) (*EditResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	edited, err := costing.EditLineCrew(snapshot, ref, crew)
	if err != nil {
		return nil, err
	}
	return s.finishLineEdit(ctx, edited, ref, "crew_size", crew.String())
}

// EditLineQuantity sets the quantity of a line
func (s *BudgetService) EditLineQuantity(ctx context.Context, budgetID entities.BudgetID, ref costing.LineRef, quantity decimal.Decimal) (*EditResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	edited, err := costing.EditLineQuantity(snapshot, ref, quantity)
	if err != nil {
		return nil, err
	}
	return s.finishLineEdit(ctx, edited, ref, "quantity", quantity.String())
}

// EditYieldShift sets the production basis of a partida's APU
func (s *BudgetService) EditYieldShift(ctx context.Context, budgetID entities.BudgetID, partidaID entities.PartidaID, yield, shift decimal.Decimal) (*EditResult, error) {
	snapshot, err := s.LoadSnapshot(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	edited, err := costing.EditYieldShift(snapshot, partidaID, yield, shift)
	if err != nil {
		return nil, err
	}

	apu := edited.APUs[edited.APUIndex(partidaID)]
	if err := s.store.SaveAPU(ctx, budgetID, &apu); err != nil {
		return nil, fmt.Errorf("failed to save APU %s: %w", partidaID, err)
	}
	s.publish(events.NewLineEditedEvent(budgetID, events.LineAddress{PartidaID: partidaID}, "yield_shift",
		fmt.Sprintf("%s/%s", yield, shift)))

	result, err := s.computeAndPersist(ctx, edited)
	if err != nil {
		return nil, err
	}
	return &EditResult{Budget: result}, nil
}

func (s *BudgetService) finishLineEdit(ctx context.Context, edited *dto.BudgetSnapshot, ref costing.LineRef, field, value string) (*EditResult, error) {
	budgetID := edited.Budget.ID
	if err := s.saveChanged(ctx, edited, []costing.LineRef{ref}); err != nil {
		return nil, err
	}
	if err := s.store.SaveSharedPrices(ctx, budgetID, edited.SharedPrices); err != nil {
		return nil, fmt.Errorf("failed to save shared prices: %w", err)
	}
	s.publish(events.NewLineEditedEvent(budgetID, address(ref), field, value))

	result, err := s.computeAndPersist(ctx, edited)
	if err != nil {
		return nil, err
	}
	return &EditResult{Budget: result, Changed: []costing.LineRef{ref}}, nil
}

// saveChanged stores every APU containing one of the changed lines
func (s *BudgetService) saveChanged(ctx context.Context, snapshot *dto.BudgetSnapshot, changed []costing.LineRef) error {
	saved := make(map[entities.PartidaID]bool, len(changed))
	for _, ref := range changed {
		if saved[ref.PartidaID] {
			continue
		}
		idx := snapshot.APUIndex(ref.PartidaID)
		if idx < 0 {
			continue
		}
		if err := s.store.SaveAPU(ctx, snapshot.Budget.ID, &snapshot.APUs[idx]); err != nil {
			return fmt.Errorf("failed to save APU %s: %w", ref.PartidaID, err)
		}
		saved[ref.PartidaID] = true
	}
	return nil
}

func (s *BudgetService) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", event.Type()), zap.Error(err))
	}
}

func findLine(snapshot *dto.BudgetSnapshot, ref costing.LineRef) (*entities.APU, *entities.ResourceLine) {
	idx := snapshot.APUIndex(ref.PartidaID)
	if idx < 0 {
		return nil, nil
	}
	apu := &snapshot.APUs[idx]
	li := apu.Line(ref.LineID)
	if li < 0 {
		return apu, nil
	}
	return apu, &apu.Lines[li]
}

func address(ref costing.LineRef) events.LineAddress {
	return events.LineAddress{PartidaID: ref.PartidaID, LineID: ref.LineID}
}
