package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func maxQ(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		min      string
		max      decimal.NullDecimal
		want     StockStatus
	}{
		{"zero", "0", "5", decimal.NullDecimal{}, StatusOutOfStock},
		{"negative", "-1", "5", decimal.NullDecimal{}, StatusOutOfStock},
		{"zero ignores thresholds", "0", "0", maxQ("1"), StatusOutOfStock},
		{"below min", "3", "5", decimal.NullDecimal{}, StatusLowStock},
		{"at min", "5", "5", decimal.NullDecimal{}, StatusLowStock},
		{"fractional just above min", "5.001", "5", decimal.NullDecimal{}, StatusInStock},
		{"between thresholds", "10", "5", maxQ("20"), StatusInStock},
		{"at max", "20", "5", maxQ("20"), StatusOnOrder},
		{"above max", "25", "5", maxQ("20"), StatusOnOrder},
		{"no max", "1000", "5", decimal.NullDecimal{}, StatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(d(tt.quantity), d(tt.min), tt.max)
			if got != tt.want {
				t.Errorf("DeriveStatus(%s, %s, %v) = %s, want %s", tt.quantity, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestStockStatusValid(t *testing.T) {
	for _, s := range []StockStatus{StatusInStock, StatusLowStock, StatusOutOfStock, StatusOnOrder} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if StockStatus("OVERSTOCKED").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
