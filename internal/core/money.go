// Package core holds the domain entities of the ledger engine together
// with their validation rules and the typed views returned by read paths.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact monetary amount stored as integer cents.
// All arithmetic is done on cents; decimal is used at the parse and
// format boundaries so user input never goes through a float.
type Money struct {
	Cents int64
}

var centsPerUnit = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to Money with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Zero and negative values are rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(centsPerUnit).Round(0)
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as an exact decimal in whole currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimal places, e.g. "380.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

func (m Money) GreaterThan(o Money) bool {
	return m.Cents > o.Cents
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
