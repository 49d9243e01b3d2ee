package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name                       string
		subtotal, tax, profit      string
		formula                    TotalsFormula
		wantTax, wantProfit, total string
	}{
		{"tax only", "2716.40", "18", "10", TaxOnly, "488.95", "271.64", "3205.35"},
		{"tax and profit", "2716.40", "18", "10", TaxAndProfit, "488.95", "271.64", "3476.99"},
		{"round numbers", "100", "18", "0", TaxOnly, "18", "0", "118"},
		{"no rates", "100", "0", "0", TaxAndProfit, "0", "0", "100"},
		{"half cent rounds away from zero", "0.25", "10", "10", TaxOnly, "0.03", "0.03", "0.28"},
		{"empty budget", "0", "18", "10", TaxAndProfit, "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(d(tt.subtotal), d(tt.tax), d(tt.profit), tt.formula)
			assert.Truef(t, got.Tax.Equal(d(tt.wantTax)), "tax = %s, want %s", got.Tax, tt.wantTax)
			assert.Truef(t, got.Profit.Equal(d(tt.wantProfit)), "profit = %s, want %s", got.Profit, tt.wantProfit)
			assert.Truef(t, got.Total.Equal(d(tt.total)), "total = %s, want %s", got.Total, tt.total)
			assert.True(t, got.Subtotal.Equal(d(tt.subtotal)))
		})
	}
}

func TestParseTotalsFormula(t *testing.T) {
	f, err := ParseTotalsFormula("")
	require.NoError(t, err)
	assert.Equal(t, TaxOnly, f)

	f, err = ParseTotalsFormula(" TAX_AND_PROFIT ")
	require.NoError(t, err)
	assert.Equal(t, TaxAndProfit, f)
	assert.Equal(t, "tax_and_profit", f.String())

	_, err = ParseTotalsFormula("gross")
	assert.Error(t, err)
}
