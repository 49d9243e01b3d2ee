package costing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// PartidaPricing is the priced form of one APU
type PartidaPricing struct {
	PartidaID entities.PartidaID
	UnitPrice decimal.Decimal
	Lines     []entities.ResourceLine
}

// ExtendedPrice returns unit price x partida quantity, rounded to cents
func (p PartidaPricing) ExtendedPrice(quantity decimal.Decimal) decimal.Decimal {
	return entities.RoundMoney(p.UnitPrice.Mul(quantity))
}

// PriceAPU computes the unit price of an analysis. The APU passed in is not
// modified; the returned lines carry derived quantities, resolved prices and
// parciales.
//
// Order: crew/yield sync, price resolution (catalog, overrides, nested
// assemblies), "%mo" resolution from the labor-hour subtotal, parciales.
// This swaps the usual "labor subtotal, then shared prices" sequence: shared
// prices are resolved first so "%mo" lines see the prices the "hh" lines are
// actually charged at.
func PriceAPU(apu entities.APU, catalog *PriceCatalog, nested NestedResolver) (PartidaPricing, error) {
	work := apu.Clone()

	SyncCrewYield(&work)

	for i := range work.Lines {
		line := &work.Lines[i]
		switch {
		case line.IsPercentOfLabor():
			// resolved below, even on nested lines
		case line.IsNested():
			if nested == nil {
				return PartidaPricing{}, &StructuralError{PartidaID: apu.PartidaID, LineID: line.ID, Err: ErrNestedTargetMissing}
			}
			price, err := nested(line.NestedPartidaID)
			if err != nil {
				return PartidaPricing{}, wrapNested(apu.PartidaID, line.ID, err)
			}
			line.Price = price
		default:
			catalog.Resolve(line)
		}
	}

	lc := ContextFor(work)
	lc.LaborHourSubtotal = ResolvePercentOfLabor(&work)

	unit := decimal.Zero
	for i := range work.Lines {
		work.Lines[i].Parcial = ComputeLineCost(work.Lines[i], lc)
		unit = unit.Add(work.Lines[i].Parcial)
	}

	return PartidaPricing{
		PartidaID: apu.PartidaID,
		UnitPrice: entities.RoundMoney(unit),
		Lines:     work.Lines,
	}, nil
}

// PricePartida prices a single partida against a catalog. A partida without an
// analysis prices at zero.
func PricePartida(partida entities.Partida, apu *entities.APU, catalog *PriceCatalog, nested NestedResolver) (PartidaPricing, decimal.Decimal, error) {
	if apu == nil {
		return PartidaPricing{PartidaID: partida.ID, UnitPrice: decimal.Zero}, decimal.Zero, nil
	}
	pricing, err := PriceAPU(*apu, catalog, nested)
	if err != nil {
		return PartidaPricing{}, decimal.Zero, err
	}
	return pricing, pricing.ExtendedPrice(partida.Quantity), nil
}

// wrapNested attributes an error from a nested evaluation to the containing line
func wrapNested(partidaID entities.PartidaID, lineID entities.LineID, err error) error {
	return &StructuralError{PartidaID: partidaID, LineID: lineID, Err: err}
}
