package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func TestPriceIDFor_IsDeterministic(t *testing.T) {
	a := PriceIDFor("B1", "CEMENTO")
	b := PriceIDFor("B1", "CEMENTO")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, PriceIDFor("B2", "CEMENTO"))
	assert.NotEqual(t, a, PriceIDFor("B1", "ARENA"))
}

func TestNewPriceCatalog_FirstEntryWins(t *testing.T) {
	c := NewPriceCatalog("B1", []entities.SharedPrice{
		{ID: "a", ResourceID: "CEMENTO", Price: d("2.00")},
		{ID: "b", ResourceID: "ARENA", Price: d("45.50")},
		{ID: "c", ResourceID: "CEMENTO", Price: d("9.99")},
	})

	price, ok := c.Lookup("CEMENTO")
	require.True(t, ok)
	assert.True(t, price.Equal(d("2.00")))
	assert.Equal(t, 2, c.Len())

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, entities.PriceID("a"), entries[0].ID)
	assert.Equal(t, entities.BudgetID("B1"), entries[0].BudgetID)
	assert.Equal(t, entities.ResourceID("ARENA"), entries[1].ResourceID)
}

func TestPriceCatalog_Set(t *testing.T) {
	c := NewPriceCatalog("B1", []entities.SharedPrice{{ID: "a", ResourceID: "CEMENTO", Price: d("2.00")}})

	c.Set("CEMENTO", d("2.50"))
	c.Set("ARENA", d("45.50"))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, entities.PriceID("a"), entries[0].ID, "existing entry keeps its id")
	assert.True(t, entries[0].Price.Equal(d("2.50")))
	assert.Equal(t, PriceIDFor("B1", "ARENA"), entries[1].ID)
	assert.True(t, entries[1].Price.Equal(d("45.50")))
}

func TestPriceCatalog_Resolve(t *testing.T) {
	t.Run("takes the catalog price", func(t *testing.T) {
		c := NewPriceCatalog("B1", []entities.SharedPrice{{ResourceID: "OPERARIO", Price: d("15")}})
		line := laborHH("1", "OPERARIO", "1", "99")

		got := c.Resolve(&line)

		assert.True(t, got.Equal(d("15")))
		assert.True(t, line.Price.Equal(d("15")))
	})

	t.Run("seeds the catalog from the line", func(t *testing.T) {
		c := NewPriceCatalog("B1", nil)
		line := material("1", "CEMENTO", "1", "0", "2.00")

		got := c.Resolve(&line)

		assert.True(t, got.Equal(d("2.00")))
		price, ok := c.Lookup("CEMENTO")
		require.True(t, ok)
		assert.True(t, price.Equal(d("2.00")))
	})

	t.Run("override keeps the pinned price", func(t *testing.T) {
		c := NewPriceCatalog("B1", []entities.SharedPrice{{ResourceID: "CEMENTO", Price: d("2.00")}})
		line := material("1", "CEMENTO", "1", "0", "1.00")
		line.Override = true
		line.OverridePrice = d("3.00")

		got := c.Resolve(&line)

		assert.True(t, got.Equal(d("3.00")))
		assert.True(t, line.Price.Equal(d("1.00")), "line price untouched")
		price, _ := c.Lookup("CEMENTO")
		assert.True(t, price.Equal(d("2.00")), "catalog untouched")
	})

	t.Run("override on an unknown resource does not seed", func(t *testing.T) {
		c := NewPriceCatalog("B1", nil)
		line := material("1", "CEMENTO", "1", "0", "1.00")
		line.Override = true
		line.OverridePrice = d("3.00")

		c.Resolve(&line)

		assert.Equal(t, 0, c.Len())
	})

	t.Run("derived lines are left alone", func(t *testing.T) {
		c := NewPriceCatalog("B1", nil)
		pct := percentOfLabor("1", "HERRAMIENTAS", "5")
		nested := nestedLine("2", "P9", "1")
		draft := material("3", "", "1", "0", "4")

		c.Resolve(&pct)
		c.Resolve(&nested)
		c.Resolve(&draft)

		assert.Equal(t, 0, c.Len())
	})
}
