package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a KES amount stored as BIGINT micros (10^-6) to avoid floating
// point errors anywhere near ledger arithmetic.
type Money struct {
	Amount int64 // micros
}

// NewMoney creates a Money from micros.
func NewMoney(amount int64) Money {
	return Money{Amount: amount}
}

// ParseAmount converts a decimal string ("500.00") to micros.
// Returns an error for malformed input; sign is not checked here.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// ToDecimal converts the int64 micros to a shopspring/decimal.Decimal.
func (m Money) ToDecimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(1_000_000))
}

// FromDecimal converts a decimal.Decimal to int64 micros.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(1_000_000)).IntPart()
}

// String returns the string representation of the money.
func (m Money) String() string {
	return fmt.Sprintf("KES %s", m.ToDecimal().StringFixed(2))
}
