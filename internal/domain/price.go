package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a decimal price string (e.g. "24", "24.50").
// Prices are exact fixed-point decimals: equality and ordering are total
// and never go through floating point.
func ParsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return p, nil
}

// PriceFromInt converts a whole-unit integer amount to a price.
func PriceFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// ValidPrice reports whether p is positive with at most two decimal places.
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.Equal(p.Round(2))
}
