package events

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	require.NoError(t, store.Publish(NewBudgetRecomputedEvent("B1", decimal.NewFromInt(100), decimal.NewFromInt(118), 0)))
	require.NoError(t, store.Publish(NewLineEditedEvent("B1", LineAddress{PartidaID: "P1", LineID: "1"}, "price", "2.50")))
	require.NoError(t, store.Publish(NewBudgetRecomputedEvent("B2", decimal.Zero, decimal.Zero, 1)))

	b1, err := store.ReadEvents("B1", 0)
	require.NoError(t, err)
	require.Len(t, b1, 2)
	assert.Equal(t, 1, b1[0].Version())
	assert.Equal(t, 2, b1[1].Version())
	assert.Equal(t, LineEditedEvent, b1[1].Type())

	tail, err := store.ReadEvents("B1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)

	none, err := store.ReadEvents("B1", 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B2", all[1].StreamID())
}

func TestInMemoryEventStore_Subscribe(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	var seen []string
	require.NoError(t, store.Subscribe([]string{PriceSynchronizedEvent}, HandlerFunc(func(e Event) error {
		data := e.Data().(PriceSynchronized)
		seen = append(seen, string(data.ResourceID))
		return nil
	})))
	require.NoError(t, store.Subscribe([]string{PriceSynchronizedEvent}, HandlerFunc(func(Event) error {
		return errors.New("handler failure is logged, not returned")
	})))

	err := store.Publish(NewPriceSynchronizedEvent("B1", "CEMENTO", decimal.RequireFromString("2.5"), nil))
	require.NoError(t, err)
	require.NoError(t, store.Publish(NewBudgetRecomputedEvent("B1", decimal.Zero, decimal.Zero, 0)))

	assert.Equal(t, []string{"CEMENTO"}, seen)
}
