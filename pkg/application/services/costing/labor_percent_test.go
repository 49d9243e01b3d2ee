package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func TestLaborHourSubtotal(t *testing.T) {
	a := apu("P1", "1", "8",
		laborHH("1", "OPERARIO", "1", "50"),
		laborHH("2", "PEON", "1", "30"),
		equipmentHM("3", "MEZCLADORA", "1", "100"),
		material("4", "CEMENTO", "10", "0", "2"),
	)

	got := LaborHourSubtotal(a)

	assert.True(t, got.Equal(d("640")), "labor-hour subtotal = %s, want 640", got)
}

func TestLaborHourSubtotal_UnitIsCaseInsensitive(t *testing.T) {
	line := laborHH("1", "OPERARIO", "1", "50")
	line.Unit = "HH"
	a := apu("P1", "1", "8", line)

	assert.True(t, LaborHourSubtotal(a).Equal(d("400")))
}

func TestLaborHourSubtotal_ExcludesNestedAndDraftLines(t *testing.T) {
	nested := nestedLine("2", "P9", "3")
	nested.Unit = "hh"
	nested.Price = d("100")

	draft := laborHH("3", "", "1", "50")

	a := apu("P1", "1", "8", laborHH("1", "OPERARIO", "1", "50"), nested, draft)

	assert.True(t, LaborHourSubtotal(a).Equal(d("400")))
}

func TestResolvePercentOfLabor(t *testing.T) {
	a := apu("P1", "1", "8",
		laborHH("1", "OPERARIO", "1", "50"),
		laborHH("2", "PEON", "1", "30"),
		percentOfLabor("3", "HERRAMIENTAS", "10"),
	)

	subtotal := ResolvePercentOfLabor(&a)

	assert.True(t, subtotal.Equal(d("640")))
	assert.True(t, a.Lines[2].Price.Equal(d("640")), "%%mo price = %s", a.Lines[2].Price)
	assert.True(t, a.Lines[0].Price.Equal(d("50")), "hh prices untouched")
}

func TestPriceAPU_PercentOfLabor(t *testing.T) {
	a := apu("P1", "1", "8",
		laborHH("1", "OPERARIO", "1", "50"),
		laborHH("2", "PEON", "1", "30"),
		percentOfLabor("3", "HERRAMIENTAS", "10"),
	)

	pricing, err := PriceAPU(a, NewPriceCatalog("B1", nil), nil)
	require.NoError(t, err)

	assert.True(t, pricing.Lines[2].Price.Equal(d("640")))
	assert.True(t, pricing.Lines[2].Parcial.Equal(d("64")))
	assert.True(t, pricing.UnitPrice.Equal(d("704")), "unit price = %s", pricing.UnitPrice)
}

func TestPriceAPU_PercentOfLaborWithoutLabor(t *testing.T) {
	a := apu("P1", "1", "8",
		material("1", "CEMENTO", "10", "0", "2"),
		percentOfLabor("2", "HERRAMIENTAS", "5"),
	)

	pricing, err := PriceAPU(a, NewPriceCatalog("B1", nil), nil)
	require.NoError(t, err)

	assert.True(t, pricing.Lines[1].Parcial.IsZero())
	assert.True(t, pricing.UnitPrice.Equal(d("20")))
}

func TestPriceAPU_PercentOfLaborOnNestedLine(t *testing.T) {
	line := nestedLine("3", "P9", "10")
	line.Unit = "%mo"
	a := apu("P1", "1", "8",
		laborHH("1", "OPERARIO", "1", "50"),
		laborHH("2", "PEON", "1", "30"),
		line,
	)

	calls := 0
	resolver := func(entities.PartidaID) (decimal.Decimal, error) {
		calls++
		return d("100"), nil
	}

	pricing, err := PriceAPU(a, NewPriceCatalog("B1", nil), resolver)
	require.NoError(t, err)

	assert.Zero(t, calls, "a percent-of-labor line is priced from labor, not from its nested target")
	assert.True(t, pricing.Lines[2].Price.Equal(d("640")), "price = %s", pricing.Lines[2].Price)
	assert.True(t, pricing.Lines[2].Parcial.Equal(d("64")), "parcial = %s", pricing.Lines[2].Parcial)
	assert.True(t, pricing.UnitPrice.Equal(d("704")), "unit price = %s", pricing.UnitPrice)
}
