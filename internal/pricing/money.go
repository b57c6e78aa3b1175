package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of minor-unit digits kept on every amount.
const moneyScale = 2

// Money represents a currency amount held at minor-unit precision.
// The zero value is a valid zero amount.
type Money struct {
	amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney wraps a decimal, rounding it to minor units.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d.Round(moneyScale)}
}

// MoneyFromInt builds an amount of whole currency units.
func MoneyFromInt(units int64) Money {
	return Money{amount: decimal.NewFromInt(units)}
}

// MoneyFromMinor builds an amount from minor units (paise, cents).
func MoneyFromMinor(minor int64) Money {
	return Money{amount: decimal.New(minor, -moneyScale)}
}

// ParseMoney parses a decimal string such as "1180.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("%w: parse amount %q", ErrInvalidArgument, s)
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.amount }

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{amount: m.amount.Add(o.amount)} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{amount: m.amount.Sub(o.amount)} }

// MulInt multiplies by an integer quantity. The result stays exact.
func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// MulRate multiplies by a rate and rounds the product to minor units.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return NewMoney(m.amount.Mul(rate))
}

// Cmp compares m and o, returning -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.amount.Cmp(o.amount) }

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(o Money) bool { return m.amount.Equal(o.amount) }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if m.Cmp(o) <= 0 {
		return m
	}
	return o
}

// Max returns the larger of m and o.
func (m Money) Max(o Money) Money {
	if m.Cmp(o) >= 0 {
		return m
	}
	return o
}

// ClampZero returns the amount floored at zero.
func (m Money) ClampZero() Money { return m.Max(Zero) }

// MinorUnits returns the amount in minor units.
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(moneyScale).IntPart()
}

// Float64 is intended for metrics only; never feed it back into arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String renders the amount with exactly two decimals.
func (m Money) String() string { return m.amount.StringFixed(moneyScale) }

// MarshalJSON encodes the amount as a fixed-point string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: decode amount: %v", ErrInvalidArgument, err)
	}
	*m = NewMoney(d)
	return nil
}

// UnmarshalText lets text-based decoders (YAML, env) populate amounts.
func (m *Money) UnmarshalText(text []byte) error {
	parsed, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText mirrors UnmarshalText.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
