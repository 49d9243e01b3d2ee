package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.345", "2.35"},
		{"-2.345", "-2.35"},
		{"39.99999999", "40"},
	}
	for _, tt := range tests {
		got := RoundMoney(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("RoundMoney(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTruncQuantity(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2.66666666", "2.6666"},
		{"0.00009", "0"},
		{"8", "8"},
	}
	for _, tt := range tests {
		got := TruncQuantity(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("TruncQuantity(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewPartidaAndTitle(t *testing.T) {
	if _, err := NewPartida("P1", "B1", "", "", "m2", decimal.NewFromInt(1)); err == nil {
		t.Error("expected error for partida without title")
	}
	if _, err := NewPartida("P1", "B1", "T1", "P1", "m2", decimal.NewFromInt(1)); err == nil {
		t.Error("expected error for self-parented partida")
	}
	p, err := NewPartida("P1", "B1", "T1", "", "m2", decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsTopLevel() {
		t.Error("expected top-level partida")
	}

	if _, err := NewTitle("T1", "B1", "T1", 0, "Obras"); err == nil {
		t.Error("expected error for self-parented title")
	}
	title, err := NewTitle("T1", "B1", "", 1, "Obras provisionales")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !title.IsRoot() {
		t.Error("expected root title")
	}

	if _, err := NewBudget("B1", "Casa", decimal.NewFromInt(-1), decimal.Zero); err == nil {
		t.Error("expected error for negative tax")
	}
}
