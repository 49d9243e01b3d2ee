package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// GetAPU returns the analysis of a partida
func (s *Store) GetAPU(_ context.Context, partidaID entities.PartidaID) (*entities.APU, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, exists := s.apuMap[partidaID]
	if !exists {
		return nil, fmt.Errorf("APU for partida %s: %w", partidaID, repositories.ErrNotFound)
	}
	apu := s.apus[index].Clone()
	return &apu, nil
}

// GetAPUs returns the analyses of a budget in insertion order
func (s *Store) GetAPUs(_ context.Context, budgetID entities.BudgetID) ([]*entities.APU, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var apus []*entities.APU
	for i := range s.apus {
		if s.apuOwner[s.apus[i].PartidaID] != budgetID {
			continue
		}
		apu := s.apus[i].Clone()
		apus = append(apus, &apu)
	}
	return apus, nil
}

// SaveAPU creates or replaces an analysis with all of its lines
func (s *Store) SaveAPU(_ context.Context, budgetID entities.BudgetID, apu *entities.APU) error {
	if apu.PartidaID == "" {
		return fmt.Errorf("APU partida id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := apu.Clone()
	s.apuOwner[apu.PartidaID] = budgetID
	if index, exists := s.apuMap[apu.PartidaID]; exists {
		s.apus[index] = stored
		return nil
	}
	s.apuMap[apu.PartidaID] = len(s.apus)
	s.apus = append(s.apus, stored)
	return nil
}
