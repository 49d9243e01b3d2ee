package costing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// Propagate rolls extended prices up the title tree.
//
// A title's subtotal is the sum of the extended prices of its top-level
// partidas plus the subtotals of its child titles. Sub-partidas are already
// priced inside their parent partida and are skipped. The budget subtotal is
// the sum of the root titles' subtotals.
func Propagate(
	titles []entities.Title,
	partidas []entities.Partida,
	extended map[entities.PartidaID]decimal.Decimal,
) (map[entities.TitleID]decimal.Decimal, decimal.Decimal, error) {
	known := make(map[entities.TitleID]bool, len(titles))
	for _, t := range titles {
		known[t.ID] = true
	}

	children := make(map[entities.TitleID][]entities.Title, len(titles))
	var roots []entities.Title
	for _, t := range titles {
		if t.IsRoot() {
			roots = append(roots, t)
			continue
		}
		if !known[t.ParentID] {
			return nil, decimal.Zero, fmt.Errorf("title %s references %s: %w", t.ID, t.ParentID, ErrTitleParentMissing)
		}
		children[t.ParentID] = append(children[t.ParentID], t)
	}

	direct := make(map[entities.TitleID]decimal.Decimal, len(titles))
	for _, p := range partidas {
		if !p.IsTopLevel() || !known[p.TitleID] {
			continue
		}
		direct[p.TitleID] = direct[p.TitleID].Add(extended[p.ID])
	}

	subtotals := make(map[entities.TitleID]decimal.Decimal, len(titles))
	visiting := make(map[entities.TitleID]bool)

	var visit func(t entities.Title) (decimal.Decimal, error)
	visit = func(t entities.Title) (decimal.Decimal, error) {
		if sub, done := subtotals[t.ID]; done {
			return sub, nil
		}
		if visiting[t.ID] {
			return decimal.Zero, fmt.Errorf("title %s: %w", t.ID, ErrTitleCycle)
		}
		visiting[t.ID] = true

		sub := direct[t.ID]
		for _, child := range sortByOrder(children[t.ID]) {
			childSub, err := visit(child)
			if err != nil {
				return decimal.Zero, err
			}
			sub = sub.Add(childSub)
		}

		delete(visiting, t.ID)
		sub = entities.RoundMoney(sub)
		subtotals[t.ID] = sub
		return sub, nil
	}

	budget := decimal.Zero
	for _, root := range sortByOrder(roots) {
		sub, err := visit(root)
		if err != nil {
			return nil, decimal.Zero, err
		}
		budget = budget.Add(sub)
	}

	// Titles unreachable from any root can only sit on a parent cycle
	for _, t := range titles {
		if _, done := subtotals[t.ID]; !done {
			return nil, decimal.Zero, fmt.Errorf("title %s is not reachable from a root: %w", t.ID, ErrTitleCycle)
		}
	}

	return subtotals, entities.RoundMoney(budget), nil
}

func sortByOrder(titles []entities.Title) []entities.Title {
	sorted := append([]entities.Title(nil), titles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}
