package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

type stubUsage struct {
	count int
	err   error
	calls int
}

func (s *stubUsage) CountByCustomer(_ context.Context, _, _ string) (int, error) {
	s.calls++
	return s.count, s.err
}

func newTestService(usage UsageCounter) *Service {
	perUser := 1
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	catalog := NewCatalog(
		Rule{Code: "shaadi10", Kind: KindPercentage, Value: decimal.NewFromInt(10), MinOrderValue: pricing.MoneyFromInt(1000), PerUserLimit: &perUser, Active: true},
		Rule{Code: "OLD", Kind: KindFlat, Value: decimal.NewFromInt(100), ValidUntil: ptrTime(now.Add(-time.Hour)), Active: true},
	)
	return &Service{
		Store:  catalog,
		Usage:  usage,
		Now:    func() time.Time { return now },
		Logger: zerolog.Nop(),
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestApplyGrantsDiscount(t *testing.T) {
	obs.MustRegisterDomainMetrics("pricing_test", prometheus.NewRegistry())
	before := testutil.ToFloat64(obs.CouponValidationTotal.WithLabelValues("applied"))

	svc := newTestService(&stubUsage{})
	applied, err := svc.Apply(context.Background(), " shaadi10", pricing.MoneyFromInt(2500), "cust-1")
	require.NoError(t, err)
	require.Equal(t, "SHAADI10", applied.Code)
	require.Equal(t, "250.00", applied.Discount.String())

	after := testutil.ToFloat64(obs.CouponValidationTotal.WithLabelValues("applied"))
	require.Equal(t, before+1, after)
}

func TestApplyPerUserLimit(t *testing.T) {
	usage := &stubUsage{count: 1}
	svc := newTestService(usage)
	_, err := svc.Apply(context.Background(), "SHAADI10", pricing.MoneyFromInt(2500), "cust-1")
	require.True(t, errors.Is(err, ErrPerUserLimitReached))
	require.Equal(t, 1, usage.calls)
	require.True(t, IsRejection(err))
}

func TestApplyUsageLookupFailureDoesNotBlock(t *testing.T) {
	svc := newTestService(&stubUsage{err: errors.New("db down")})
	applied, err := svc.Apply(context.Background(), "SHAADI10", pricing.MoneyFromInt(2500), "cust-1")
	require.NoError(t, err)
	require.Equal(t, "250.00", applied.Discount.String())
}

func TestApplyRejections(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "", pricing.MoneyFromInt(2500), "")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Apply(ctx, "NOPE", pricing.MoneyFromInt(2500), "")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Apply(ctx, "OLD", pricing.MoneyFromInt(2500), "")
	require.ErrorIs(t, err, ErrExpired)

	_, err = svc.Apply(ctx, "SHAADI10", pricing.MoneyFromInt(500), "")
	require.ErrorIs(t, err, ErrMinimumOrderUnmet)
	require.Equal(t, "The order does not meet the minimum value for this coupon", RejectionMessage(err))
}

func TestApplyNotConfigured(t *testing.T) {
	var svc *Service
	_, err := svc.Apply(context.Background(), "X", pricing.Zero, "")
	require.Error(t, err)
	require.False(t, IsRejection(err))
}
