package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newClockedBreaker(min int, ratio float64, openFor time.Duration) (*Breaker, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("quote_cache", min, ratio, openFor)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerTransitions(t *testing.T) {
	MustRegisterMetrics("resilience_test", prometheus.NewRegistry())
	breaker, now := newClockedBreaker(2, 0.5, 50*time.Millisecond)
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)

	require.False(t, breaker.Allow(ctx), "breaker should open after threshold exceeded")
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerState.WithLabelValues("quote_cache")))

	*now = now.Add(60 * time.Millisecond)
	require.True(t, breaker.Allow(ctx), "breaker should admit a probe after cool off")
	require.Equal(t, HalfOpen, breaker.State())
	require.False(t, breaker.Allow(ctx), "only one probe at a time")
	breaker.Report(ctx, true)
	require.Equal(t, Closed, breaker.State())
	require.True(t, breaker.Allow(ctx))

	require.Equal(t, 1.0, testutil.ToFloat64(BreakerTransitions.WithLabelValues("quote_cache", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerTransitions.WithLabelValues("quote_cache", "half_open", "closed")))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	breaker, now := newClockedBreaker(1, 0.5, time.Second)
	ctx := context.Background()

	breaker.Report(ctx, false)
	require.Equal(t, Open, breaker.State())

	*now = now.Add(time.Second)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, Open, breaker.State())
	require.False(t, breaker.Allow(ctx))
}

func TestBreakerDo(t *testing.T) {
	breaker, _ := newClockedBreaker(1, 0.5, time.Minute)
	ctx := context.Background()
	miss := errors.New("miss")

	err := breaker.Do(ctx, func(context.Context) error { return miss }, func(err error) bool { return errors.Is(err, miss) })
	require.ErrorIs(t, err, miss)
	require.Equal(t, Closed, breaker.State(), "ignored errors count as successes")

	boom := errors.New("boom")
	require.ErrorIs(t, breaker.Do(ctx, func(context.Context) error { return boom }, nil), boom)
	require.Equal(t, Open, breaker.State())
	require.ErrorIs(t, breaker.Do(ctx, func(context.Context) error { return nil }, nil), ErrOpenCircuit)

	var nilBreaker *Breaker
	require.NoError(t, nilBreaker.Do(ctx, func(context.Context) error { return nil }, nil))
}
