// Package core holds the finance records shown by the tracker and the
// helpers used to parse and display their amounts.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount. The zero value is 0.
type Money struct {
	decimal.Decimal
}

// NewMoney builds a Money from a float, used mostly by tests and fixtures.
func NewMoney(v float64) Money {
	return Money{Decimal: decimal.NewFromFloat(v)}
}

// ParseAmount converts user input to Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Blank
// input returns ErrMissingFields, anything that is not a number returns
// ErrInvalidAmount. Sign is not checked here, see Validate.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrMissingFields
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// Validate rejects zero and negative amounts.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Format renders the amount with two decimals behind the currency symbol,
// e.g. "$150.50" or "-$12.00".
func (m Money) Format(symbol string) string {
	if m.IsNegative() {
		return "-" + symbol + m.Neg().StringFixed(2)
	}
	return symbol + m.StringFixed(2)
}
