package testing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/infrastructure/repositories/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// mustCreateLine is a helper for tests - panics on validation error
func mustCreateLine(id string, kind entities.ResourceKind, resource, unit, quantity, price string) entities.ResourceLine {
	line, err := entities.NewResourceLine(
		entities.LineID(id),
		kind,
		entities.ResourceID(resource),
		unit,
		dec(quantity),
		dec(price),
	)
	if err != nil {
		panic(err)
	}
	return *line
}

// mustCreateNestedLine is a helper for tests - panics on validation error
func mustCreateNestedLine(id, target, unit, quantity string) entities.ResourceLine {
	line, err := entities.NewNestedLine(entities.LineID(id), entities.PartidaID(target), unit, dec(quantity))
	if err != nil {
		panic(err)
	}
	return *line
}

func crew(line entities.ResourceLine, size string) entities.ResourceLine {
	line.CrewSize = dec(size)
	return line
}

func waste(line entities.ResourceLine, pct string) entities.ResourceLine {
	line.WastePct = dec(pct)
	return line
}

type partidaSpec struct {
	id, title, parent, code, description, unit, quantity string
}

type apuSpec struct {
	partida, yield, shift string
	lines                 []entities.ResourceLine
}

// build stores a budget described by specs; any error panics
func build(budgetID, name, taxPct, profitPct string, titles [][3]string, partidas []partidaSpec, apus []apuSpec) *memory.Store {
	ctx := context.Background()
	store := memory.NewStore(len(partidas))

	budget, err := entities.NewBudget(entities.BudgetID(budgetID), name, dec(taxPct), dec(profitPct))
	if err != nil {
		panic(err)
	}
	if err := store.SaveBudget(ctx, budget); err != nil {
		panic(err)
	}

	for i, t := range titles {
		title, err := entities.NewTitle(entities.TitleID(t[0]), budget.ID, entities.TitleID(t[1]), i+1, t[2])
		if err != nil {
			panic(err)
		}
		if err := store.SaveTitle(ctx, title); err != nil {
			panic(err)
		}
	}

	for _, p := range partidas {
		partida, err := entities.NewPartida(
			entities.PartidaID(p.id),
			budget.ID,
			entities.TitleID(p.title),
			entities.PartidaID(p.parent),
			p.unit,
			dec(p.quantity),
		)
		if err != nil {
			panic(err)
		}
		partida.Code = p.code
		partida.Description = p.description
		if err := store.SavePartida(ctx, partida); err != nil {
			panic(err)
		}
	}

	for _, a := range apus {
		apu := &entities.APU{
			PartidaID:   entities.PartidaID(a.partida),
			Yield:       dec(a.yield),
			ShiftLength: dec(a.shift),
			Lines:       a.lines,
		}
		if err := store.SaveAPU(ctx, budget.ID, apu); err != nil {
			panic(err)
		}
	}

	return store
}

// BuildViviendaTestData builds a house budget "B1" with a two-level title
// tree, crew-driven labor, a %mo tool allowance and a nested assembly.
//
// Computed with the tax_only formula: P1 261, P2 214.20, P3 150.50, P4 0;
// subtotal 2716.40, tax 488.95, total 3205.35.
func BuildViviendaTestData() *memory.Store {
	return build("B1", "Vivienda unifamiliar", "18", "10",
		[][3]string{
			{"T1", "", "Estructuras"},
			{"T2", "T1", "Encofrado"},
			{"T3", "", "Acabados"},
		},
		[]partidaSpec{
			{"P1", "T1", "", "01.01", "Concreto f'c=210 kg/cm2", "m3", "3"},
			{"P2", "T2", "", "01.02.01", "Encofrado y desencofrado", "m2", "2"},
			{"P3", "T3", "", "02.01", "Tarrajeo de muros", "m2", "10"},
			{"P4", "T3", "", "02.02", "Limpieza final", "glb", "1"},
		},
		[]apuSpec{
			{"P1", "1", "8", []entities.ResourceLine{
				waste(mustCreateLine("1", entities.Material, "CEMENTO", "bls", "10", "2.00"), "5"),
				crew(mustCreateLine("2", entities.Labor, "OPERARIO", "hh", "0", "15.00"), "2"),
			}},
			{"P2", "2", "8", []entities.ResourceLine{
				crew(mustCreateLine("1", entities.Labor, "OPERARIO", "hh", "0", "99.00"), "1"),
				crew(mustCreateLine("2", entities.Labor, "PEON", "hh", "0", "12.00"), "3"),
				mustCreateLine("3", entities.Equipment, "HERRAMIENTAS", "%mo", "5", "0"),
			}},
			{"P3", "4", "8", []entities.ResourceLine{
				mustCreateNestedLine("1", "P1", "m3", "0.5"),
				mustCreateLine("2", entities.Subcontract, "PINTURA", "glb", "1", "20.00"),
			}},
		},
	)
}

// BuildCyclicTestData builds budget "BC" where P1 and P2 nest each other and
// P3 prices normally at 100. P1 and P2 fail; the budget subtotal is 100.
func BuildCyclicTestData() *memory.Store {
	return build("BC", "Referencia circular", "18", "0",
		[][3]string{{"T1", "", "General"}},
		[]partidaSpec{
			{"P1", "T1", "", "01", "Muro A", "m2", "1"},
			{"P2", "T1", "", "02", "Muro B", "m2", "1"},
			{"P3", "T1", "", "03", "Pintura", "m2", "1"},
		},
		[]apuSpec{
			{"P1", "1", "8", []entities.ResourceLine{mustCreateNestedLine("1", "P2", "m2", "1")}},
			{"P2", "1", "8", []entities.ResourceLine{mustCreateNestedLine("1", "P1", "m2", "1")}},
			{"P3", "1", "8", []entities.ResourceLine{
				mustCreateLine("1", entities.Subcontract, "PINTURA", "m2", "1", "100"),
			}},
		},
	)
}
