package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how a manual discount value is interpreted.
type DiscountKind string

const (
	DiscountFlat       DiscountKind = "flat"
	DiscountPercentage DiscountKind = "percentage"
)

var hundred = decimal.NewFromInt(100)

// ResolveDiscount converts a manual discount into an amount against base.
// Flat discounts are capped at base; percentages are clamped into [0, 100].
func ResolveDiscount(kind DiscountKind, value decimal.Decimal, base Money) (Money, error) {
	base = base.ClampZero()
	switch DiscountKind(strings.ToLower(string(kind))) {
	case DiscountFlat, "":
		if value.IsNegative() {
			return Zero, fmt.Errorf("%w: negative flat discount %s", ErrInvalidArgument, value)
		}
		return NewMoney(value).Min(base), nil
	case DiscountPercentage:
		pct := decimal.Min(decimal.Max(value, decimal.Zero), hundred)
		return base.MulRate(pct.Div(hundred)), nil
	default:
		return Zero, fmt.Errorf("%w: unknown discount type %q", ErrInvalidConfiguration, kind)
	}
}
