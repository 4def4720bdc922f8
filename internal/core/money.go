// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing and the JSON form go through
// shopspring/decimal so that "12.5", "12,50" and 12.5 all land on 1250 cents.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is a
// valid amount; negative values are rejected since the sign is carried by the
// transaction type.
//
// Examples:
//   ParseAmount("12.34")  -> 1234, nil
//   ParseAmount("12,345") -> 1235, nil
//   ParseAmount("-1")     -> 0, ErrInvalidAmount
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
	return moneyFromDecimal(d)
}

// MustAmount is ParseAmount for literals in tests and seed data.
func MustAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MaxCents caps a single amount at 100 billion units, so a ledger would need
// close to a million maximal entries before a balance overflows int64.
const MaxCents int64 = 10_000_000_000_000

func moneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(MaxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount without trailing zeros ("500", "12.5").
func (m Money) String() string {
	return m.Decimal().String()
}

// Float returns the amount as a float64 for display purposes only.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Add and Sub do cents arithmetic; the result may be negative (a balance).
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		return ErrInvalidAmount
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return ErrInvalidAmount
	}
	parsed, err := moneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
