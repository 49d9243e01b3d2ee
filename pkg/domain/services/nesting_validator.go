package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// NestingValidator checks the structural integrity of a budget: nested-assembly
// references between APUs, partida ownership and the title tree
type NestingValidator struct{}

// NewNestingValidator creates a new nesting validator
func NewNestingValidator() *NestingValidator {
	return &NestingValidator{}
}

// DanglingReference is a nested line pointing at a partida that does not exist
type DanglingReference struct {
	PartidaID entities.PartidaID
	LineID    entities.LineID
	Target    entities.PartidaID
}

// ValidationResult contains the results of structural validation
type ValidationResult struct {
	HasCycles           bool
	CyclePaths          [][]entities.PartidaID
	TitleCyclePaths     [][]entities.TitleID
	DanglingRefs        []DanglingReference
	DuplicateLineIDs    map[entities.PartidaID][]entities.LineID
	OrphanedAPUs        []entities.PartidaID
	OrphanedPartidas    []entities.PartidaID
	OrphanedTitles      []entities.TitleID
	// UnfoldedSubPartidas are sub-partidas no nested line of their parent's
	// APU points at. Their cost reaches no subtotal.
	UnfoldedSubPartidas []entities.PartidaID
	Errors              []string
}

// Valid reports whether no structural error was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate performs every structural check over one budget's records
func (v *NestingValidator) Validate(titles []entities.Title, partidas []entities.Partida, apus []entities.APU) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:       make([][]entities.PartidaID, 0),
		TitleCyclePaths:  make([][]entities.TitleID, 0),
		DanglingRefs:     make([]DanglingReference, 0),
		DuplicateLineIDs: make(map[entities.PartidaID][]entities.LineID),
		Errors:           make([]string, 0),
	}

	titleSet := make(map[entities.TitleID]bool, len(titles))
	for _, t := range titles {
		titleSet[t.ID] = true
	}
	partidaSet := make(map[entities.PartidaID]bool, len(partidas))
	for _, p := range partidas {
		partidaSet[p.ID] = true
	}

	for _, p := range partidas {
		if !titleSet[p.TitleID] {
			result.OrphanedPartidas = append(result.OrphanedPartidas, p.ID)
			result.Errors = append(result.Errors, fmt.Sprintf("partida %s references missing title %s", p.ID, p.TitleID))
		}
		if p.ParentID != "" && !partidaSet[p.ParentID] {
			result.OrphanedPartidas = append(result.OrphanedPartidas, p.ID)
			result.Errors = append(result.Errors, fmt.Sprintf("partida %s references missing parent partida %s", p.ID, p.ParentID))
		}
	}

	adjacency := v.buildAdjacencyMap(apus)
	for _, p := range partidas {
		if p.ParentID == "" || !partidaSet[p.ParentID] {
			continue
		}
		if !containsPartida(adjacency[p.ParentID], p.ID) {
			result.UnfoldedSubPartidas = append(result.UnfoldedSubPartidas, p.ID)
			result.Errors = append(result.Errors, fmt.Sprintf(
				"sub-partida %s is not referenced by a nested line in partida %s; its cost is not counted", p.ID, p.ParentID))
		}
	}

	for _, t := range titles {
		if t.ParentID != "" && !titleSet[t.ParentID] {
			result.OrphanedTitles = append(result.OrphanedTitles, t.ID)
			result.Errors = append(result.Errors, fmt.Sprintf("title %s references missing parent title %s", t.ID, t.ParentID))
		}
	}

	for _, apu := range apus {
		if !partidaSet[apu.PartidaID] {
			result.OrphanedAPUs = append(result.OrphanedAPUs, apu.PartidaID)
			result.Errors = append(result.Errors, fmt.Sprintf("APU belongs to missing partida %s", apu.PartidaID))
		}

		seen := make(map[entities.LineID]bool, len(apu.Lines))
		for _, line := range apu.Lines {
			if seen[line.ID] {
				result.DuplicateLineIDs[apu.PartidaID] = append(result.DuplicateLineIDs[apu.PartidaID], line.ID)
			}
			seen[line.ID] = true

			if line.IsNested() && !partidaSet[line.NestedPartidaID] {
				result.DanglingRefs = append(result.DanglingRefs, DanglingReference{
					PartidaID: apu.PartidaID,
					LineID:    line.ID,
					Target:    line.NestedPartidaID,
				})
				result.Errors = append(result.Errors, fmt.Sprintf(
					"line %s of partida %s references missing partida %s", line.ID, apu.PartidaID, line.NestedPartidaID))
			}
		}
	}

	for _, id := range sortedKeys(result.DuplicateLineIDs) {
		result.Errors = append(result.Errors, fmt.Sprintf("partida %s has duplicate line ids: %v", id, result.DuplicateLineIDs[id]))
	}

	result.CyclePaths = v.detectCycles(adjacency)
	result.HasCycles = len(result.CyclePaths) > 0
	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("nested assembly cycle detected: %v", cycle))
	}

	result.TitleCyclePaths = v.detectTitleCycles(titles)
	for _, cycle := range result.TitleCyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("title cycle detected: %v", cycle))
	}

	return result
}

// buildAdjacencyMap creates a map of partida -> nested target partidas
func (v *NestingValidator) buildAdjacencyMap(apus []entities.APU) map[entities.PartidaID][]entities.PartidaID {
	adjacencyMap := make(map[entities.PartidaID][]entities.PartidaID)

	for _, apu := range apus {
		for _, line := range apu.Lines {
			if !line.FoldsNested() {
				continue
			}

			children := adjacencyMap[apu.PartidaID]
			if !containsPartida(children, line.NestedPartidaID) {
				adjacencyMap[apu.PartidaID] = append(children, line.NestedPartidaID)
			}
		}
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the nesting graph
func (v *NestingValidator) detectCycles(adjacencyMap map[entities.PartidaID][]entities.PartidaID) [][]entities.PartidaID {
	visited := make(map[entities.PartidaID]bool)
	recursionStack := make(map[entities.PartidaID]bool)
	cycles := make([][]entities.PartidaID, 0)

	// Sorted start points keep the report stable between runs
	for _, parent := range sortedKeys(adjacencyMap) {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycle performs depth-first search to detect cycles
func (v *NestingValidator) dfsDetectCycle(
	current entities.PartidaID,
	adjacencyMap map[entities.PartidaID][]entities.PartidaID,
	visited map[entities.PartidaID]bool,
	recursionStack map[entities.PartidaID]bool,
	path []entities.PartidaID,
	cycles *[][]entities.PartidaID,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
		} else if recursionStack[child] {
			for i, part := range path {
				if part == child {
					cycle := make([]entities.PartidaID, 0, len(path)-i+1)
					cycle = append(cycle, path[i:]...)
					cycle = append(cycle, child) // close the cycle
					*cycles = append(*cycles, cycle)
					break
				}
			}
		}
	}

	recursionStack[current] = false
}

// detectTitleCycles walks each title's parent chain
func (v *NestingValidator) detectTitleCycles(titles []entities.Title) [][]entities.TitleID {
	parents := make(map[entities.TitleID]entities.TitleID, len(titles))
	for _, t := range titles {
		parents[t.ID] = t.ParentID
	}

	cycles := make([][]entities.TitleID, 0)
	reported := make(map[entities.TitleID]bool)

	for _, t := range titles {
		onPath := make(map[entities.TitleID]int)
		var path []entities.TitleID
		for current := t.ID; current != ""; current = parents[current] {
			if reported[current] {
				break
			}
			if start, ok := onPath[current]; ok {
				cycle := append(append([]entities.TitleID{}, path[start:]...), current)
				for _, id := range path[start:] {
					reported[id] = true
				}
				cycles = append(cycles, cycle)
				break
			}
			if _, known := parents[current]; !known {
				break
			}
			onPath[current] = len(path)
			path = append(path, current)
		}
	}

	return cycles
}

func containsPartida(ids []entities.PartidaID, id entities.PartidaID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[entities.PartidaID]V) []entities.PartidaID {
	keys := make([]entities.PartidaID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
