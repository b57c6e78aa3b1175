package quote

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-pricing/internal/pricing"
	"github.com/noah-isme/booking-pricing/internal/resilience"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	var got Response
	hit, err := cache.Get(ctx, "quote:abc", &got)
	require.NoError(t, err)
	require.False(t, hit)

	want := Response{Quote: pricing.Result{BookingType: pricing.BookingRental}, Cached: true}
	want.Quote.TotalPayable = pricing.MustMoney("99.50")
	require.NoError(t, cache.Set(ctx, "quote:abc", want))

	hit, err = cache.Get(ctx, "quote:abc", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.False(t, got.Cached, "the cached flag is set by the service, not stored")
	require.Equal(t, "99.50", got.Quote.TotalPayable.String())
}

func TestCacheBreakerSkipsUnhealthyRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	breaker := resilience.NewBreaker("quote_cache_test", 1, 0.5, time.Hour)
	cache := NewCache(client, time.Minute).WithBreaker(breaker)
	ctx := context.Background()

	mr.Close()
	var got Response
	_, err := cache.Get(ctx, "quote:k", &got)
	require.Error(t, err)
	require.Equal(t, resilience.Open, breaker.State())

	hit, err := cache.Get(ctx, "quote:k", &got)
	require.NoError(t, err, "open breaker skips redis silently")
	require.False(t, hit)
	require.NoError(t, cache.Set(ctx, "quote:k", Response{}))
}

func TestCacheDisabled(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	require.False(t, cache.Enabled())
	hit, err := cache.Get(context.Background(), "quote:x", &Response{})
	require.NoError(t, err)
	require.False(t, hit)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.False(t, NewCache(client, 0).Enabled())
}
