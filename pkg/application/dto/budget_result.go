package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// PartidaPrice is the computed price of one partida
type PartidaPrice struct {
	PartidaID     entities.PartidaID      `json:"partida_id" yaml:"partida_id"`
	UnitPrice     decimal.Decimal         `json:"unit_price" yaml:"unit_price"`
	ExtendedPrice decimal.Decimal         `json:"extended_price" yaml:"extended_price"`
	Lines         []entities.ResourceLine `json:"lines,omitempty" yaml:"-"`
}

// PartidaFailure reports a partida whose analysis could not be priced
type PartidaFailure struct {
	PartidaID entities.PartidaID `json:"partida_id" yaml:"partida_id"`
	LineID    entities.LineID    `json:"line_id,omitempty" yaml:"line_id,omitempty"`
	Reason    string             `json:"reason" yaml:"reason"`
}

// BudgetResult contains the complete output of a budget computation
type BudgetResult struct {
	BudgetID       entities.BudgetID                    `json:"budget_id" yaml:"budget_id"`
	PartidaPrices  map[entities.PartidaID]PartidaPrice  `json:"partida_prices" yaml:"partida_prices"`
	TitleSubtotals map[entities.TitleID]decimal.Decimal `json:"title_subtotals" yaml:"title_subtotals"`
	BudgetSubtotal decimal.Decimal                      `json:"budget_subtotal" yaml:"budget_subtotal"`
	Tax            decimal.Decimal                      `json:"tax" yaml:"tax"`
	Profit         decimal.Decimal                      `json:"profit" yaml:"profit"`
	Total          decimal.Decimal                      `json:"total" yaml:"total"`
	SharedPrices   []entities.SharedPrice               `json:"shared_prices" yaml:"-"`
	Failures       []PartidaFailure                     `json:"failures,omitempty" yaml:"failures,omitempty"`
}
