package costing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func TestPricePartida(t *testing.T) {
	partida := entities.Partida{ID: "P1", Quantity: d("3")}
	a := apu("P1", "1", "8",
		material("1", "CEMENTO", "10", "5", "2.00"),
		laborHH("2", "OPERARIO", "2", "15.00"),
	)

	pricing, extended, err := PricePartida(partida, &a, NewPriceCatalog("B1", nil), nil)
	require.NoError(t, err)

	assert.True(t, pricing.Lines[0].Parcial.Equal(d("21")))
	assert.True(t, pricing.Lines[1].Parcial.Equal(d("240")))
	assert.True(t, pricing.Lines[1].Quantity.Equal(d("16")), "derived labor hours = %s", pricing.Lines[1].Quantity)
	assert.True(t, pricing.UnitPrice.Equal(d("261")))
	assert.True(t, extended.Equal(d("783")))

	assert.True(t, a.Lines[1].Quantity.IsZero(), "input APU is not modified")
}

func TestPricePartida_WithoutAPU(t *testing.T) {
	pricing, extended, err := PricePartida(entities.Partida{ID: "P4", Quantity: d("5")}, nil, NewPriceCatalog("B1", nil), nil)
	require.NoError(t, err)

	assert.Equal(t, entities.PartidaID("P4"), pricing.PartidaID)
	assert.True(t, pricing.UnitPrice.IsZero())
	assert.True(t, extended.IsZero())
}

func TestPriceAPU_ExtendedPriceRounding(t *testing.T) {
	a := apu("P1", "3", "8", laborHH("1", "OPERARIO", "1", "10"))

	pricing, err := PriceAPU(a, NewPriceCatalog("B1", nil), nil)
	require.NoError(t, err)

	assert.True(t, pricing.UnitPrice.Equal(d("26.67")))
	assert.True(t, pricing.ExtendedPrice(d("3")).Equal(d("80.01")))
}

func TestPriceAPU_NestedWithoutResolver(t *testing.T) {
	a := apu("P3", "1", "8", nestedLine("1", "P1", "1"))

	_, err := PriceAPU(a, NewPriceCatalog("B1", nil), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNestedTargetMissing))
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, entities.PartidaID("P3"), structural.PartidaID)
	assert.Equal(t, entities.LineID("1"), structural.LineID)
}

func TestPriceAPU_NestedResolverPrice(t *testing.T) {
	a := apu("P3", "4", "8",
		nestedLine("1", "P1", "0.5"),
		subcontract("2", "PINTURA", "1", "20.00"),
	)
	resolver := func(target entities.PartidaID) (decimal.Decimal, error) {
		if target != "P1" {
			return decimal.Zero, ErrNestedTargetMissing
		}
		return d("261"), nil
	}

	pricing, err := PriceAPU(a, NewPriceCatalog("B1", nil), resolver)
	require.NoError(t, err)

	assert.True(t, pricing.Lines[0].Price.Equal(d("261")))
	assert.True(t, pricing.Lines[0].Parcial.Equal(d("130.50")))
	assert.True(t, pricing.UnitPrice.Equal(d("150.50")))
}
