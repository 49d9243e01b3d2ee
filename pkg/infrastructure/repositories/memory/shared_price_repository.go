package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// GetSharedPrices returns the catalog of a budget in insertion order
func (s *Store) GetSharedPrices(_ context.Context, budgetID entities.BudgetID) ([]*entities.SharedPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.prices[budgetID]
	prices := make([]*entities.SharedPrice, 0, len(stored))
	for i := range stored {
		price := stored[i]
		prices = append(prices, &price)
	}
	return prices, nil
}

// SaveSharedPrices upserts catalog entries by resource. Entries without an id
// are assigned a random UUID.
func (s *Store) SaveSharedPrices(_ context.Context, budgetID entities.BudgetID, prices []entities.SharedPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.prices[budgetID]
	byResource := make(map[entities.ResourceID]int, len(stored))
	for i, p := range stored {
		byResource[p.ResourceID] = i
	}

	for _, p := range prices {
		p.BudgetID = budgetID
		if index, exists := byResource[p.ResourceID]; exists {
			if p.ID == "" {
				p.ID = stored[index].ID
			}
			stored[index] = p
			continue
		}
		if p.ID == "" {
			p.ID = entities.PriceID(uuid.NewString())
		}
		byResource[p.ResourceID] = len(stored)
		stored = append(stored, p)
	}

	s.prices[budgetID] = stored
	return nil
}
