package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/booking-pricing/internal/common"
	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/resilience"
)

const cachePrefix = "quote:"

// Cache stores computed quotes in Redis as JSON. A nil client disables it. Calls go
// through a circuit breaker so an unhealthy Redis is skipped instead of slowing quotes.
type Cache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *resilience.Breaker
}

// NewCache constructs a quote cache. A non-positive ttl disables caching.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		client = nil
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		breaker: resilience.NewBreaker("quote_cache", 5, 0.5, 30*time.Second),
	}
}

// WithBreaker replaces the default breaker; nil disables it.
func (c *Cache) WithBreaker(b *resilience.Breaker) *Cache {
	c.breaker = b
	return c
}

// Enabled reports whether lookups reach Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key derives the cache key of a normalised request.
func Key(req Request) (string, error) {
	sum, err := common.HashJSON(req)
	if err != nil {
		return "", err
	}
	return cachePrefix + sum, nil
}

// Get loads a cached response. It reports whether the key existed.
func (c *Cache) Get(ctx context.Context, key string, dst *Response) (bool, error) {
	if !c.Enabled() || key == "" {
		return false, nil
	}
	var data []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		return err
	}, isMiss)
	switch {
	case errors.Is(err, resilience.ErrOpenCircuit):
		obs.ObserveQuoteCache("skipped")
		return false, nil
	case isMiss(err):
		obs.ObserveQuoteCache("miss")
		return false, nil
	case err != nil:
		obs.ObserveQuoteCache("error")
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		obs.ObserveQuoteCache("error")
		return false, err
	}
	obs.ObserveQuoteCache("hit")
	return true, nil
}

// Set stores resp under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, resp Response) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	resp.Cached = false
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, key, data, c.ttl).Err()
	}, nil)
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return nil
	}
	return err
}

func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
