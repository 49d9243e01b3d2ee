package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/application/services/costing"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
	"github.com/vsinha/presupuesto/pkg/infrastructure/events"
	csvloader "github.com/vsinha/presupuesto/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/presupuesto/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/presupuesto/pkg/infrastructure/testing"
)

const viviendaDir = "../../infrastructure/repositories/csv/testdata/vivienda"

type serviceFixture struct {
	store   *memory.Store
	service *BudgetService
	events  []events.Event
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	scenario, err := csvloader.NewLoader().LoadScenario(viviendaDir)
	require.NoError(t, err)

	store := memory.NewStore(len(scenario.Partidas))
	require.NoError(t, scenario.Store(context.Background(), store))

	f := &serviceFixture{store: store}
	eventStore := events.NewInMemoryEventStore(zap.NewNop())
	require.NoError(t, eventStore.Subscribe([]string{
		events.PriceSynchronizedEvent,
		events.LineEditedEvent,
		events.BudgetRecomputedEvent,
		events.PartidaPricingFailedEvent,
	}, events.HandlerFunc(func(e events.Event) error {
		f.events = append(f.events, e)
		return nil
	})))

	f.service = NewBudgetServiceWithConfig(store, BudgetServiceConfig{Publisher: eventStore})
	return f
}

func (f *serviceFixture) eventTypes() []string {
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type())
	}
	return types
}

func money(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), append([]interface{}{"got %s, want %s", got, want}, msgAndArgs...)...)
}

func TestBudgetService_Compute(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	result, err := f.service.Compute(ctx, "B1")
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	money(t, "2716.40", result.BudgetSubtotal)
	money(t, "488.95", result.Tax)
	money(t, "3205.35", result.Total)

	// computed caches are written back
	p1, err := f.store.GetPartida(ctx, "P1")
	require.NoError(t, err)
	money(t, "261", p1.UnitPrice)
	money(t, "783", p1.ExtendedPrice)

	titles, err := f.store.GetTitles(ctx, "B1")
	require.NoError(t, err)
	subtotals := make(map[entities.TitleID]decimal.Decimal)
	for _, title := range titles {
		subtotals[title.ID] = title.Subtotal
	}
	money(t, "1211.40", subtotals["T1"])
	money(t, "1505", subtotals["T3"])

	// derived hh quantity is persisted with the priced line
	apu, err := f.store.GetAPU(ctx, "P1")
	require.NoError(t, err)
	idx := apu.Line("2")
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, apu.Lines[idx].Quantity.Equal(decimal.NewFromInt(16)), "quantity %s", apu.Lines[idx].Quantity)
	money(t, "240", apu.Lines[idx].Parcial)

	prices, err := f.store.GetSharedPrices(ctx, "B1")
	require.NoError(t, err)
	assert.Len(t, prices, 4)

	assert.Equal(t, []string{events.BudgetRecomputedEvent}, f.eventTypes())
}

func TestBudgetService_PreviewDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	result, err := f.service.Preview(ctx, "B1")
	require.NoError(t, err)
	money(t, "3205.35", result.Total)

	p1, err := f.store.GetPartida(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, p1.UnitPrice.IsZero())
	assert.Empty(t, f.events)
}

func TestBudgetService_UnknownBudget(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Compute(context.Background(), "missing")
	assert.True(t, errors.Is(err, repositories.ErrNotFound), "got %v", err)
}

func TestBudgetService_Validate(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Validate(context.Background(), "B1")
	require.NoError(t, err)
	assert.True(t, result.Valid(), "errors: %v", result.Errors)
}

func TestBudgetService_EditLinePriceBroadcasts(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	edit, err := f.service.EditLinePrice(ctx, "B1", costing.LineRef{PartidaID: "P1", LineID: "2"}, decimal.NewFromInt(20))
	require.NoError(t, err)

	assert.ElementsMatch(t, []costing.LineRef{
		{PartidaID: "P1", LineID: "2"},
		{PartidaID: "P2", LineID: "1"},
	}, edit.Changed)

	money(t, "341", edit.Budget.PartidaPrices["P1"].UnitPrice)
	money(t, "235.20", edit.Budget.PartidaPrices["P2"].UnitPrice)
	// P3 nests half a unit of P1
	money(t, "190.50", edit.Budget.PartidaPrices["P3"].UnitPrice)

	// the edit survives a reload from the store
	again, err := f.service.Compute(ctx, "B1")
	require.NoError(t, err)
	money(t, "235.20", again.PartidaPrices["P2"].UnitPrice)

	assert.Equal(t, []string{
		events.LineEditedEvent,
		events.PriceSynchronizedEvent,
		events.BudgetRecomputedEvent,
		events.BudgetRecomputedEvent,
	}, f.eventTypes())

	synced, ok := f.events[1].Data().(events.PriceSynchronized)
	require.True(t, ok)
	assert.Equal(t, entities.ResourceID("OPERARIO"), synced.ResourceID)
	assert.Len(t, synced.UpdatedLines, 2)
}

func TestBudgetService_EditLinePriceRejectsDerived(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.EditLinePrice(context.Background(), "B1", costing.LineRef{PartidaID: "P2", LineID: "3"}, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, costing.ErrDerivedPrice)

	_, err = f.service.EditLinePrice(context.Background(), "B1", costing.LineRef{PartidaID: "P2", LineID: "9"}, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, costing.ErrLineNotFound)
	assert.Empty(t, f.events)
}

func TestBudgetService_SetLineOverride(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	edit, err := f.service.SetLineOverride(ctx, "B1", costing.LineRef{PartidaID: "P2", LineID: "1"}, true, decimal.NewFromInt(30))
	require.NoError(t, err)
	money(t, "277.20", edit.Budget.PartidaPrices["P2"].UnitPrice)
	// P1 keeps the catalog OPERARIO price
	money(t, "261", edit.Budget.PartidaPrices["P1"].UnitPrice)

	edit, err = f.service.SetLineOverride(ctx, "B1", costing.LineRef{PartidaID: "P2", LineID: "1"}, false, decimal.Zero)
	require.NoError(t, err)
	money(t, "214.20", edit.Budget.PartidaPrices["P2"].UnitPrice)
}

func TestBudgetService_EditLineCrew(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	edit, err := f.service.EditLineCrew(ctx, "B1", costing.LineRef{PartidaID: "P1", LineID: "2"}, decimal.NewFromInt(4))
	require.NoError(t, err)
	money(t, "501", edit.Budget.PartidaPrices["P1"].UnitPrice)

	_, err = f.service.EditLineCrew(ctx, "B1", costing.LineRef{PartidaID: "P1", LineID: "1"}, decimal.NewFromInt(4))
	assert.ErrorIs(t, err, costing.ErrNotCrewDriven)
}

func TestBudgetService_EditYieldShift(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	// doubling the yield halves the hours per unit
	edit, err := f.service.EditYieldShift(ctx, "B1", "P1", decimal.NewFromInt(2), decimal.NewFromInt(8))
	require.NoError(t, err)
	money(t, "141", edit.Budget.PartidaPrices["P1"].UnitPrice)

	apu, err := f.store.GetAPU(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, apu.Yield.Equal(decimal.NewFromInt(2)))
}

func TestBudgetService_ComputeReportsNestedCycle(t *testing.T) {
	ctx := context.Background()
	eventStore := events.NewInMemoryEventStore(zap.NewNop())
	service := NewBudgetServiceWithConfig(testhelpers.BuildCyclicTestData(), BudgetServiceConfig{Publisher: eventStore})

	result, err := service.Compute(ctx, "BC")
	require.NoError(t, err)

	failed := make([]entities.PartidaID, 0, len(result.Failures))
	for _, f := range result.Failures {
		failed = append(failed, f.PartidaID)
	}
	assert.ElementsMatch(t, []entities.PartidaID{"P1", "P2"}, failed)
	money(t, "100", result.BudgetSubtotal)
	money(t, "118", result.Total)

	stream, err := eventStore.ReadEvents("BC", 0)
	require.NoError(t, err)
	require.Len(t, stream, 3)
	assert.Equal(t, events.PartidaPricingFailedEvent, stream[0].Type())
	assert.Equal(t, events.BudgetRecomputedEvent, stream[2].Type())
}

func TestBudgetService_ProgrammaticFixtureMatchesCSV(t *testing.T) {
	service := NewBudgetService(testhelpers.BuildViviendaTestData())

	result, err := service.Preview(context.Background(), "B1")
	require.NoError(t, err)
	money(t, "3205.35", result.Total)
}
