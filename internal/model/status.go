package model

import "github.com/shopspring/decimal"

type StockStatus string

const (
	StatusInStock    StockStatus = "IN_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StatusOnOrder    StockStatus = "ON_ORDER"
)

// DefaultMinQuantity is the low-stock threshold a record gets when none is given.
var DefaultMinQuantity = decimal.NewFromInt(5)

func (s StockStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock, StatusOnOrder:
		return true
	}
	return false
}

// DeriveStatus maps a quantity onto a status label.
//
// Reaching maxQuantity yields ON_ORDER, not an "overstocked" label. That is the
// existing business rule and is kept as-is until the product owner confirms
// otherwise.
func DeriveStatus(quantity, minQuantity decimal.Decimal, maxQuantity decimal.NullDecimal) StockStatus {
	switch {
	case quantity.Sign() <= 0:
		return StatusOutOfStock
	case quantity.LessThanOrEqual(minQuantity):
		return StatusLowStock
	case maxQuantity.Valid && quantity.GreaterThanOrEqual(maxQuantity.Decimal):
		return StatusOnOrder
	default:
		return StatusInStock
	}
}
