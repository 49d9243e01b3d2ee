package main

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/application/dto"
	"github.com/vsinha/presupuesto/pkg/application/services/costing"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func main() {
	// A small wall: bricks and mortar priced per m2, with a bricklayer crew
	snapshot := &dto.BudgetSnapshot{
		Budget: entities.Budget{ID: "DEMO", Name: "Muro de ladrillo", TaxPct: d("18"), ProfitPct: d("8")},
		Titles: []entities.Title{
			{ID: "T1", BudgetID: "DEMO", Order: 1, Name: "Albañilería"},
		},
		Partidas: []entities.Partida{
			{ID: "MORTERO", BudgetID: "DEMO", TitleID: "T1", ParentID: "MURO", Description: "Mortero 1:4", Unit: "m3", Quantity: d("0.03")},
			{ID: "MURO", BudgetID: "DEMO", TitleID: "T1", Description: "Muro de soga", Unit: "m2", Quantity: d("120")},
		},
		APUs: []entities.APU{
			{
				PartidaID: "MORTERO", Yield: d("2"), ShiftLength: d("8"),
				Lines: []entities.ResourceLine{
					{ID: "1", Kind: entities.Material, ResourceID: "CEMENTO", Unit: "bls", Quantity: d("8.5"), Price: d("28.50")},
					{ID: "2", Kind: entities.Material, ResourceID: "ARENA", Unit: "m3", Quantity: d("1.1"), Price: d("55")},
					{ID: "3", Kind: entities.Labor, ResourceID: "PEON", Unit: "hh", CrewSize: d("1"), Price: d("18.40")},
				},
			},
			{
				PartidaID: "MURO", Yield: d("10"), ShiftLength: d("8"),
				Lines: []entities.ResourceLine{
					{ID: "1", Kind: entities.Material, ResourceID: "LADRILLO", Unit: "und", Quantity: d("39"), WastePct: d("5"), Price: d("0.85")},
					{ID: "2", Kind: entities.Subcontract, NestedPartidaID: "MORTERO", Unit: "m3", Quantity: d("0.03")},
					{ID: "3", Kind: entities.Labor, ResourceID: "OPERARIO", Unit: "hh", CrewSize: d("1"), Price: d("24.60")},
					{ID: "4", Kind: entities.Labor, ResourceID: "PEON", Unit: "hh", CrewSize: d("0.5"), Price: d("18.40")},
					{ID: "5", Kind: entities.Equipment, ResourceID: "HERRAMIENTAS", Unit: "%mo", Quantity: d("3")},
				},
			},
		},
	}

	engine := costing.NewEngine()

	fmt.Println("🧱 Pricing brick wall...")
	result, err := engine.Compute(snapshot)
	if err != nil {
		fmt.Printf("❌ Compute failed: %v\n", err)
		return
	}
	printResult(snapshot, result)

	// Raise the labourer rate once; every PEON line follows the shared price
	fmt.Println("\n✏️  PEON rate 18.40 -> 21.00")
	edited, changed, err := costing.EditLinePrice(snapshot, costing.LineRef{PartidaID: "MURO", LineID: "4"}, d("21"))
	if err != nil {
		fmt.Printf("❌ Edit failed: %v\n", err)
		return
	}
	for _, ref := range changed {
		fmt.Printf("  updated %s\n", ref)
	}

	result, err = engine.Compute(edited)
	if err != nil {
		fmt.Printf("❌ Compute failed: %v\n", err)
		return
	}
	printResult(edited, result)
}

func printResult(snapshot *dto.BudgetSnapshot, result *dto.BudgetResult) {
	fmt.Println("📊 Partidas:")
	for _, p := range snapshot.Partidas {
		price := result.PartidaPrices[p.ID]
		fmt.Printf("  %-10s %-14s %8s %s x %10s = %12s\n",
			p.ID, p.Description, p.Quantity, p.Unit,
			price.UnitPrice.StringFixed(2), price.ExtendedPrice.StringFixed(2))
	}
	fmt.Printf("  Subtotal %s  Tax %s  Total %s\n",
		result.BudgetSubtotal.StringFixed(2), result.Tax.StringFixed(2), result.Total.StringFixed(2))
}
