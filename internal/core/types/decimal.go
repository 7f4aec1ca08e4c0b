// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors in order totals.
type Money = decimal.Decimal

// NullMoney is a Money that may be absent in storage.
type NullMoney = decimal.NullDecimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromInt creates a Money value from a whole number.
func NewMoneyFromInt(n int64) Money {
	return decimal.NewFromInt(n)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ValidMoney wraps m as a present NullMoney.
func ValidMoney(m Money) NullMoney {
	return decimal.NewNullDecimal(m)
}

// OrZero returns the contained value, or zero when absent.
func OrZero(m NullMoney) Money {
	if !m.Valid {
		return decimal.Zero
	}
	return m.Decimal
}

// LineTotal multiplies a unit price by an integer quantity.
func LineTotal(unitPrice Money, quantity int) Money {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Float returns m as float64 for score arithmetic. Precision loss is acceptable there.
func Float(m Money) float64 {
	f, _ := m.Float64()
	return f
}
