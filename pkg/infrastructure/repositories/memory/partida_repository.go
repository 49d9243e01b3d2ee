package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// GetPartida returns a partida
func (s *Store) GetPartida(_ context.Context, id entities.PartidaID) (*entities.Partida, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, exists := s.partidaMap[id]
	if !exists {
		return nil, fmt.Errorf("partida %s: %w", id, repositories.ErrNotFound)
	}
	partida := s.partidas[index]
	return &partida, nil
}

// GetPartidas returns the partidas of a budget in insertion order
func (s *Store) GetPartidas(_ context.Context, budgetID entities.BudgetID) ([]*entities.Partida, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var partidas []*entities.Partida
	for i := range s.partidas {
		if s.partidas[i].BudgetID != budgetID {
			continue
		}
		partida := s.partidas[i]
		partidas = append(partidas, &partida)
	}
	return partidas, nil
}

// SavePartida creates or replaces a partida
func (s *Store) SavePartida(_ context.Context, partida *entities.Partida) error {
	if partida.ID == "" {
		return fmt.Errorf("partida id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index, exists := s.partidaMap[partida.ID]; exists {
		s.partidas[index] = *partida
		return nil
	}
	s.partidaMap[partida.ID] = len(s.partidas)
	s.partidas = append(s.partidas, *partida)
	return nil
}

// UpdatePartidaPrices writes computed unit and extended prices
func (s *Store) UpdatePartidaPrices(_ context.Context, updates []repositories.PartidaPriceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		index, exists := s.partidaMap[u.PartidaID]
		if !exists {
			return fmt.Errorf("partida %s: %w", u.PartidaID, repositories.ErrNotFound)
		}
		s.partidas[index].UnitPrice = u.UnitPrice
		s.partidas[index].ExtendedPrice = u.ExtendedPrice
	}
	return nil
}
