// Package core holds the domain types shared by the storage, service and
// HTTP layers: expenses, dimensions, money amounts and sort specifications.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact amount in cents. Zero and negative values are valid:
// refunds are recorded as negative expenses.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money, rounding half-up at the
// cent. Both dot and comma decimal separators are accepted. An empty or
// blank string is not an amount; callers decide whether that means
// "default to zero" (bulk ingestion) or "required field missing" (create).
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimal places, e.g. "12.50" or "-3.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number with cent precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Bare numbers are accepted as well as quoted strings.
		s = string(b)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
