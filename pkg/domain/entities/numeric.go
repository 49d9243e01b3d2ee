package entities

import "github.com/shopspring/decimal"

const (
	// MoneyPlaces is the number of decimal places kept for monetary values
	MoneyPlaces int32 = 2
	// QuantityPlaces is the number of decimal places kept for quantities and crew sizes
	QuantityPlaces int32 = 4
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to two decimal places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// TruncQuantity truncates a quantity or crew size to four decimal places
func TruncQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(QuantityPlaces)
}

// Percent returns d/100
func Percent(d decimal.Decimal) decimal.Decimal {
	return d.Div(hundred)
}
