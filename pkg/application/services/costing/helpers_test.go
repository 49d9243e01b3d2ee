package costing

import (
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func material(id entities.LineID, res entities.ResourceID, qty, waste, price string) entities.ResourceLine {
	return entities.ResourceLine{
		ID: id, Kind: entities.Material, ResourceID: res, Unit: "und",
		Quantity: d(qty), WastePct: d(waste), Price: d(price),
	}
}

func laborHH(id entities.LineID, res entities.ResourceID, crew, price string) entities.ResourceLine {
	return entities.ResourceLine{
		ID: id, Kind: entities.Labor, ResourceID: res, Unit: "hh",
		CrewSize: d(crew), Price: d(price),
	}
}

func equipmentHM(id entities.LineID, res entities.ResourceID, crew, price string) entities.ResourceLine {
	return entities.ResourceLine{
		ID: id, Kind: entities.Equipment, ResourceID: res, Unit: "hm",
		CrewSize: d(crew), Price: d(price),
	}
}

func percentOfLabor(id entities.LineID, res entities.ResourceID, pct string) entities.ResourceLine {
	return entities.ResourceLine{
		ID: id, Kind: entities.Equipment, ResourceID: res, Unit: "%mo", Quantity: d(pct),
	}
}

func subcontract(id entities.LineID, res entities.ResourceID, qty, price string) entities.ResourceLine {
	return entities.ResourceLine{
		ID: id, Kind: entities.Subcontract, ResourceID: res, Unit: "glb",
		Quantity: d(qty), Price: d(price),
	}
}

func nestedLine(id entities.LineID, target entities.PartidaID, qty string) entities.ResourceLine {
	return entities.ResourceLine{
		ID: id, Kind: entities.Subcontract, NestedPartidaID: target, Unit: "und", Quantity: d(qty),
	}
}

func apu(partida entities.PartidaID, yield, shift string, lines ...entities.ResourceLine) entities.APU {
	return entities.APU{PartidaID: partida, Yield: d(yield), ShiftLength: d(shift), Lines: lines}
}

// sampleSnapshot builds a small budget:
//
//	T1 Estructuras
//	  P1 Concreto (qty 3)   - material + labor        = 261.00
//	  T2 Encofrado
//	    P2 Encofrado (qty 2) - labor + %mo tools      = 214.20
//	T3 Acabados
//	  P3 Tarrajeo (qty 10)   - nested P1 x 0.5 + sub  = 150.50
//	  P4 (no APU yet)
func sampleSnapshot() *dto.BudgetSnapshot {
	return &dto.BudgetSnapshot{
		Budget: entities.Budget{ID: "B1", Name: "Vivienda", TaxPct: d("18"), ProfitPct: d("10")},
		Titles: []entities.Title{
			{ID: "T1", BudgetID: "B1", Order: 1, Name: "Estructuras"},
			{ID: "T2", BudgetID: "B1", ParentID: "T1", Order: 1, Name: "Encofrado"},
			{ID: "T3", BudgetID: "B1", Order: 2, Name: "Acabados"},
		},
		Partidas: []entities.Partida{
			{ID: "P1", BudgetID: "B1", TitleID: "T1", Unit: "m3", Quantity: d("3")},
			{ID: "P2", BudgetID: "B1", TitleID: "T2", Unit: "m2", Quantity: d("2")},
			{ID: "P3", BudgetID: "B1", TitleID: "T3", Unit: "m2", Quantity: d("10")},
			{ID: "P4", BudgetID: "B1", TitleID: "T3", Unit: "glb", Quantity: d("1")},
		},
		APUs: []entities.APU{
			apu("P1", "1", "8",
				material("1", "CEMENTO", "10", "5", "2.00"),
				laborHH("2", "OPERARIO", "2", "15.00"),
			),
			apu("P2", "2", "8",
				laborHH("1", "OPERARIO", "1", "99.00"), // takes the shared 15.00
				laborHH("2", "PEON", "3", "12.00"),
				percentOfLabor("3", "HERRAMIENTAS", "5"),
			),
			apu("P3", "4", "8",
				nestedLine("1", "P1", "0.5"),
				subcontract("2", "PINTURA", "1", "20.00"),
			),
		},
	}
}
