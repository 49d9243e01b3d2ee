package dto

import "github.com/vsinha/presupuesto/pkg/domain/entities"

// BudgetSnapshot is the complete, in-memory input of one budget computation
type BudgetSnapshot struct {
	Budget       entities.Budget
	Titles       []entities.Title
	Partidas     []entities.Partida
	APUs         []entities.APU
	SharedPrices []entities.SharedPrice
}

// Clone returns a deep copy so edits never alias the caller's records
func (s *BudgetSnapshot) Clone() *BudgetSnapshot {
	out := &BudgetSnapshot{
		Budget:       s.Budget,
		Titles:       append([]entities.Title(nil), s.Titles...),
		Partidas:     append([]entities.Partida(nil), s.Partidas...),
		APUs:         make([]entities.APU, len(s.APUs)),
		SharedPrices: append([]entities.SharedPrice(nil), s.SharedPrices...),
	}
	for i := range s.APUs {
		out.APUs[i] = s.APUs[i].Clone()
	}
	return out
}

// APUIndex returns the index of the APU belonging to a partida, or -1
func (s *BudgetSnapshot) APUIndex(partidaID entities.PartidaID) int {
	for i := range s.APUs {
		if s.APUs[i].PartidaID == partidaID {
			return i
		}
	}
	return -1
}
