package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// UsageCounter reports how often a customer already redeemed a coupon.
type UsageCounter interface {
	CountByCustomer(ctx context.Context, code, customerID string) (int, error)
}

// Applied describes a coupon that passed validation.
type Applied struct {
	Code        string        `json:"code"`
	Description string        `json:"description,omitempty"`
	Kind        Kind          `json:"kind"`
	Discount    pricing.Money `json:"discount"`
}

// Service evaluates coupon codes against an order value without mutating state.
type Service struct {
	Store  Store
	Usage  UsageCounter
	Now    func() time.Time
	Logger zerolog.Logger
}

// Apply validates code for orderValue and returns the discount it grants.
// Without a UsageCounter per-customer limits are not enforced.
func (s *Service) Apply(ctx context.Context, code string, orderValue pricing.Money, customerID string) (Applied, error) {
	if s == nil || s.Store == nil {
		return Applied{}, errors.New("coupon service not configured")
	}
	result := "applied"
	defer func() { obs.ObserveCoupon(result) }()

	normalized := NormalizeCode(code)
	if normalized == "" {
		result = "not_found"
		return Applied{}, fmt.Errorf("code is required: %w", ErrNotFound)
	}
	rule, err := s.Store.Find(ctx, normalized)
	if err != nil {
		result = outcome(err)
		return Applied{}, err
	}

	used := -1
	if s.Usage != nil && rule.PerUserLimit != nil && strings.TrimSpace(customerID) != "" {
		count, err := s.Usage.CountByCustomer(ctx, rule.Code, customerID)
		if err != nil {
			// usage lookup failures do not block the quote
			s.Logger.Warn().Err(err).Str("code", rule.Code).Msg("coupon usage lookup failed")
		} else {
			used = count
		}
	}

	if err := rule.Validate(s.now(), orderValue, used); err != nil {
		result = outcome(err)
		s.Logger.Debug().Str("code", rule.Code).Err(err).Msg("coupon rejected")
		return Applied{}, err
	}
	return Applied{
		Code:        rule.Code,
		Description: rule.Description,
		Kind:        rule.Kind,
		Discount:    rule.Discount(orderValue),
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsRejection reports whether err is a coupon eligibility failure rather than an infrastructure error.
func IsRejection(err error) bool {
	return outcome(err) != "error"
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotYetActive), errors.Is(err, ErrExpired):
		return "inactive"
	case errors.Is(err, ErrMinimumOrderUnmet):
		return "min_order"
	case errors.Is(err, ErrUsageLimitReached), errors.Is(err, ErrPerUserLimitReached):
		return "limit"
	default:
		return "error"
	}
}
