// Package core provides money parsing and handling utilities.
//
// Amounts are kept as decimals end to end; the spreadsheet stores them as
// plain numbers and the UI shows two fractional digits.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount. Stored amounts are never negative; differences
// computed by the summary (budget minus spent) may be.
type Money struct {
	Amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{Amount: decimal.Zero}

// NewMoney wraps a decimal.
func NewMoney(d decimal.Decimal) Money {
	return Money{Amount: d}
}

// MoneyFromFloat converts a spreadsheet number into Money.
func MoneyFromFloat(f float64) Money {
	return Money{Amount: decimal.NewFromFloat(f)}
}

// MustMoney parses s and panics on error. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney converts a user or spreadsheet string into Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Negative values and anything that is not a plain
// decimal number are rejected with ErrInvalidAmount. Zero is accepted:
// callers that need a strictly positive amount use Validate.
//
// Examples:
//
//	ParseMoney("12.34") -> 12.34, nil
//	ParseMoney(" 12,5 ") -> 12.5, nil
//	ParseMoney("-1")     -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.TrimPrefix(s, "+")
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Amount: d}, nil
}

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if !m.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Amount: m.Amount.Add(o.Amount)} }
func (m Money) Sub(o Money) Money { return Money{Amount: m.Amount.Sub(o.Amount)} }
func (m Money) Neg() Money        { return Money{Amount: m.Amount.Neg()} }
func (m Money) Abs() Money        { return Money{Amount: m.Amount.Abs()} }

// Equal compares numerically, so 15 equals 15.00.
func (m Money) Equal(o Money) bool { return m.Amount.Equal(o.Amount) }
func (m Money) Cmp(o Money) int    { return m.Amount.Cmp(o.Amount) }

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// String formats with two fractional digits, e.g. "15.00".
func (m Money) String() string {
	return m.Amount.StringFixed(2)
}

// Float64 returns the amount as a float for the spreadsheet and for display
// widgets. Use the decimal for arithmetic.
func (m Money) Float64() float64 {
	return m.Amount.InexactFloat64()
}
