package coupon

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/booking-pricing/internal/pricing"
)

var (
	// ErrNotFound is returned for unknown or deactivated coupon codes.
	ErrNotFound = errors.New("invalid coupon code")
	// ErrNotYetActive is returned before the coupon's validity window opens.
	ErrNotYetActive = errors.New("coupon not yet active")
	// ErrExpired is returned once the validity window has closed.
	ErrExpired = errors.New("coupon expired")
	// ErrMinimumOrderUnmet indicates the order value is below the coupon threshold.
	ErrMinimumOrderUnmet = errors.New("minimum order value not met")
	// ErrUsageLimitReached indicates the coupon has exhausted its global quota.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrPerUserLimitReached indicates the customer already used the coupon the allowed number of times.
	ErrPerUserLimitReached = errors.New("customer usage limit reached")
)

// Kind selects how Value is interpreted.
type Kind string

const (
	KindPercentage   Kind = "percentage"
	KindFlat         Kind = "flat"
	KindFreeShipping Kind = "free_shipping"
)

// Rule captures a coupon and its eligibility constraints.
type Rule struct {
	Code          string          `yaml:"code" json:"code"`
	Description   string          `yaml:"description" json:"description,omitempty"`
	Kind          Kind            `yaml:"kind" json:"kind"`
	Value         decimal.Decimal `yaml:"value" json:"value"`
	MaxDiscount   *pricing.Money  `yaml:"maxDiscount" json:"maxDiscount,omitempty"`
	MinOrderValue pricing.Money   `yaml:"minOrderValue" json:"minOrderValue"`
	UsageLimit    *int            `yaml:"usageLimit" json:"usageLimit,omitempty"`
	UsedCount     int             `yaml:"usedCount" json:"usedCount"`
	PerUserLimit  *int            `yaml:"perUserLimit" json:"perUserLimit,omitempty"`
	ValidFrom     time.Time       `yaml:"validFrom" json:"validFrom"`
	ValidUntil    *time.Time      `yaml:"validUntil" json:"validUntil,omitempty"`
	Active        bool            `yaml:"active" json:"active"`
}

// NormalizeCode trims and upper-cases a code the way they are stored.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks whether the rule can be applied at now for the given order value.
// perUserUsed is the number of times the customer already redeemed it; pass -1 when unknown.
func (r Rule) Validate(now time.Time, orderValue pricing.Money, perUserUsed int) error {
	if !r.Active {
		return ErrNotFound
	}
	if !r.ValidFrom.IsZero() && now.Before(r.ValidFrom) {
		return ErrNotYetActive
	}
	if r.ValidUntil != nil && now.After(*r.ValidUntil) {
		return ErrExpired
	}
	if orderValue.Cmp(r.MinOrderValue) < 0 {
		return ErrMinimumOrderUnmet
	}
	if r.UsageLimit != nil && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	if r.PerUserLimit != nil && perUserUsed >= 0 && perUserUsed >= *r.PerUserLimit {
		return ErrPerUserLimitReached
	}
	return nil
}

// Discount computes the amount taken off orderValue. It is never negative and never
// exceeds the order value.
func (r Rule) Discount(orderValue pricing.Money) pricing.Money {
	if orderValue.IsNegative() || orderValue.IsZero() {
		return pricing.Zero
	}
	var discount pricing.Money
	switch r.Kind {
	case KindPercentage:
		discount = orderValue.MulRate(r.Value.Div(decimal.NewFromInt(100)))
		if r.MaxDiscount != nil && !r.MaxDiscount.IsZero() {
			discount = discount.Min(*r.MaxDiscount)
		}
	case KindFlat:
		discount = pricing.NewMoney(r.Value)
	default:
		// free_shipping has no delivery charge to waive at quote time
		discount = pricing.Zero
	}
	return discount.Min(orderValue).ClampZero()
}
