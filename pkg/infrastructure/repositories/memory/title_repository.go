package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// GetTitles returns the titles of a budget in insertion order
func (s *Store) GetTitles(_ context.Context, budgetID entities.BudgetID) ([]*entities.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var titles []*entities.Title
	for i := range s.titles {
		if s.titles[i].BudgetID != budgetID {
			continue
		}
		title := s.titles[i]
		titles = append(titles, &title)
	}
	return titles, nil
}

// SaveTitle creates or replaces a title
func (s *Store) SaveTitle(_ context.Context, title *entities.Title) error {
	if title.ID == "" {
		return fmt.Errorf("title id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index, exists := s.titleMap[title.ID]; exists {
		s.titles[index] = *title
		return nil
	}
	s.titleMap[title.ID] = len(s.titles)
	s.titles = append(s.titles, *title)
	return nil
}

// UpdateTitleSubtotals writes computed subtotals onto the budget's titles
func (s *Store) UpdateTitleSubtotals(_ context.Context, budgetID entities.BudgetID, subtotals map[entities.TitleID]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, subtotal := range subtotals {
		index, exists := s.titleMap[id]
		if !exists || s.titles[index].BudgetID != budgetID {
			continue
		}
		s.titles[index].Subtotal = subtotal
	}
	return nil
}
