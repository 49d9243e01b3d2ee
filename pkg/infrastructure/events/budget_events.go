package events

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

const (
	PriceSynchronizedEvent    = "price.synchronized"
	LineEditedEvent           = "line.edited"
	BudgetRecomputedEvent     = "budget.recomputed"
	PartidaPricingFailedEvent = "partida.pricing_failed"
)

// LineAddress names one resource line in a budget
type LineAddress struct {
	PartidaID entities.PartidaID `json:"partida_id"`
	LineID    entities.LineID    `json:"line_id"`
}

type PriceSynchronized struct {
	BudgetID     entities.BudgetID   `json:"budget_id"`
	ResourceID   entities.ResourceID `json:"resource_id"`
	Price        decimal.Decimal     `json:"price"`
	UpdatedLines []LineAddress       `json:"updated_lines"`
}

type LineEdited struct {
	BudgetID entities.BudgetID `json:"budget_id"`
	Line     LineAddress       `json:"line"`
	Field    string            `json:"field"`
	Value    string            `json:"value"`
}

type BudgetRecomputed struct {
	BudgetID entities.BudgetID `json:"budget_id"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Total    decimal.Decimal   `json:"total"`
	Failures int               `json:"failures"`
}

type PartidaPricingFailed struct {
	BudgetID  entities.BudgetID  `json:"budget_id"`
	PartidaID entities.PartidaID `json:"partida_id"`
	LineID    entities.LineID    `json:"line_id,omitempty"`
	Reason    string             `json:"reason"`
}

func NewPriceSynchronizedEvent(
	budgetID entities.BudgetID,
	resourceID entities.ResourceID,
	price decimal.Decimal,
	updated []LineAddress,
) Event {
	return NewEvent(PriceSynchronizedEvent, string(budgetID), PriceSynchronized{
		BudgetID:     budgetID,
		ResourceID:   resourceID,
		Price:        price,
		UpdatedLines: updated,
	})
}

func NewLineEditedEvent(budgetID entities.BudgetID, line LineAddress, field, value string) Event {
	return NewEvent(LineEditedEvent, string(budgetID), LineEdited{
		BudgetID: budgetID,
		Line:     line,
		Field:    field,
		Value:    value,
	})
}

func NewBudgetRecomputedEvent(budgetID entities.BudgetID, subtotal, total decimal.Decimal, failures int) Event {
	return NewEvent(BudgetRecomputedEvent, string(budgetID), BudgetRecomputed{
		BudgetID: budgetID,
		Subtotal: subtotal,
		Total:    total,
		Failures: failures,
	})
}

func NewPartidaPricingFailedEvent(budgetID entities.BudgetID, partidaID entities.PartidaID, lineID entities.LineID, reason string) Event {
	return NewEvent(PartidaPricingFailedEvent, string(budgetID), PartidaPricingFailed{
		BudgetID:  budgetID,
		PartidaID: partidaID,
		LineID:    lineID,
		Reason:    reason,
	})
}
