package costing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

var (
	ErrNestedCycle         = errors.New("nested assembly cycle")
	ErrNestedTargetMissing = errors.New("nested assembly target not found")
	ErrDerivedPrice        = errors.New("price is derived and cannot be edited")
	ErrNotCrewDriven       = errors.New("line is not crew driven")
	ErrLineNotFound        = errors.New("resource line not found")
	ErrAPUNotFound         = errors.New("APU not found")
	ErrTitleCycle          = errors.New("title cycle")
	ErrTitleParentMissing  = errors.New("title parent not found")
	ErrNegativeValue       = errors.New("value cannot be negative")
)

// StructuralError reports corrupted nesting data for one partida and line.
// Path holds the chain of partidas being evaluated when the error surfaced.
type StructuralError struct {
	PartidaID entities.PartidaID
	LineID    entities.LineID
	Path      []entities.PartidaID
	Err       error
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "partida %s", e.PartidaID)
	if e.LineID != "" {
		fmt.Fprintf(&b, " line %s", e.LineID)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (path %v)", e.Path)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
