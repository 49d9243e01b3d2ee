package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// GetBudget returns a budget header
func (s *Store) GetBudget(_ context.Context, id entities.BudgetID) (*entities.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, exists := s.budgetMap[id]
	if !exists {
		return nil, fmt.Errorf("budget %s: %w", id, repositories.ErrNotFound)
	}
	budget := s.budgets[index]
	return &budget, nil
}

// ListBudgets returns every budget in insertion order
func (s *Store) ListBudgets(_ context.Context) ([]*entities.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budgets := make([]*entities.Budget, 0, len(s.budgets))
	for i := range s.budgets {
		budget := s.budgets[i]
		budgets = append(budgets, &budget)
	}
	return budgets, nil
}

// SaveBudget creates or replaces a budget header. An empty id is assigned a new UUID.
func (s *Store) SaveBudget(_ context.Context, budget *entities.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budget.ID == "" {
		budget.ID = entities.BudgetID(uuid.NewString())
	}
	if index, exists := s.budgetMap[budget.ID]; exists {
		s.budgets[index] = *budget
		return nil
	}
	s.budgetMap[budget.ID] = len(s.budgets)
	s.budgets = append(s.budgets, *budget)
	return nil
}
