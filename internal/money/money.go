// Package money converts between major-unit yuan amounts and integer
// cents. All equality checks across the system happen on cents to avoid
// floating-point drift.
package money

import (
	"errors"
	"math"
	"strconv"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Cents derives the canonical minor-unit value for a requested amount.
// Non-finite and non-positive amounts are rejected.
func Cents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(amount * 100)), nil
}

// ParseCents parses a gateway money string like "199.00" using the same
// rounding rule as Cents so callback amounts compare exactly against
// stored orders.
func ParseCents(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(f * 100)), nil
}

// Format renders the fixed two-decimal string the gateway expects in
// outbound requests.
func Format(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
