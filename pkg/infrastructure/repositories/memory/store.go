package memory

import (
	"sync"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// Store provides in-memory storage for every budget aggregate.
// Returned entities are copies; callers never alias stored state.
type Store struct {
	mu sync.RWMutex

	budgets   []entities.Budget
	budgetMap map[entities.BudgetID]int

	titles   []entities.Title
	titleMap map[entities.TitleID]int

	partidas   []entities.Partida
	partidaMap map[entities.PartidaID]int

	apus     []entities.APU
	apuMap   map[entities.PartidaID]int
	apuOwner map[entities.PartidaID]entities.BudgetID

	prices map[entities.BudgetID][]entities.SharedPrice
}

// NewStore creates a new in-memory store sized for the expected number of partidas
func NewStore(expectedPartidas int) *Store {
	return &Store{
		budgetMap:  make(map[entities.BudgetID]int),
		titleMap:   make(map[entities.TitleID]int),
		partidas:   make([]entities.Partida, 0, expectedPartidas),
		partidaMap: make(map[entities.PartidaID]int, expectedPartidas),
		apus:       make([]entities.APU, 0, expectedPartidas),
		apuMap:     make(map[entities.PartidaID]int, expectedPartidas),
		apuOwner:   make(map[entities.PartidaID]entities.BudgetID, expectedPartidas),
		prices:     make(map[entities.BudgetID][]entities.SharedPrice),
	}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)
