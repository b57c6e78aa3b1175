package coupon

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/booking-pricing/internal/pricing"
)

func TestDiscountPercentWithCap(t *testing.T) {
	ceiling := pricing.MoneyFromInt(500)
	rule := Rule{Kind: KindPercentage, Value: decimal.NewFromInt(20), MaxDiscount: &ceiling}
	if got := rule.Discount(pricing.MoneyFromInt(1000)); got.String() != "200.00" {
		t.Fatalf("expected 200.00 discount, got %s", got)
	}
	if got := rule.Discount(pricing.MoneyFromInt(10_000)); got.String() != "500.00" {
		t.Fatalf("expected discount capped at 500.00, got %s", got)
	}
}

func TestDiscountFlatCappedAtOrderValue(t *testing.T) {
	rule := Rule{Kind: KindFlat, Value: decimal.NewFromInt(750)}
	if got := rule.Discount(pricing.MoneyFromInt(500)); got.String() != "500.00" {
		t.Fatalf("expected flat discount capped at order value, got %s", got)
	}
	if got := rule.Discount(pricing.Zero); !got.IsZero() {
		t.Fatalf("expected zero discount on empty order, got %s", got)
	}
}

func TestDiscountFreeShippingIsZero(t *testing.T) {
	rule := Rule{Kind: KindFreeShipping, Value: decimal.NewFromInt(100)}
	if got := rule.Discount(pricing.MoneyFromInt(5000)); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestValidateOrder(t *testing.T) {
	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	until := now.Add(24 * time.Hour)
	limit := 10
	perUser := 1
	base := Rule{
		Code:          "SHAADI10",
		Kind:          KindPercentage,
		Value:         decimal.NewFromInt(10),
		MinOrderValue: pricing.MoneyFromInt(1000),
		UsageLimit:    &limit,
		PerUserLimit:  &perUser,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    &until,
		Active:        true,
	}

	cases := []struct {
		name   string
		mutate func(*Rule)
		now    time.Time
		value  int64
		used   int
		want   error
	}{
		{name: "valid", now: now, value: 2000, used: 0},
		{name: "unknown usage skips per user check", now: now, value: 2000, used: -1},
		{name: "inactive", mutate: func(r *Rule) { r.Active = false }, now: now, value: 2000, want: ErrNotFound},
		{name: "not yet active", now: now.Add(-2 * time.Hour), value: 2000, want: ErrNotYetActive},
		{name: "expired", now: until.Add(time.Second), value: 2000, want: ErrExpired},
		{name: "below minimum", now: now, value: 999, want: ErrMinimumOrderUnmet},
		{name: "global limit", mutate: func(r *Rule) { r.UsedCount = 10 }, now: now, value: 2000, want: ErrUsageLimitReached},
		{name: "per user limit", now: now, value: 2000, used: 1, want: ErrPerUserLimitReached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := base
			if tc.mutate != nil {
				tc.mutate(&rule)
			}
			err := rule.Validate(tc.now, pricing.MoneyFromInt(tc.value), tc.used)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
