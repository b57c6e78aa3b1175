package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisUsage reads per-customer redemption counters kept in Redis by the booking
// service under coupon:usage:<CODE>:<customer>.
type RedisUsage struct {
	Client redis.UniversalClient
}

// UsageKey builds the counter key for code and customerID.
func UsageKey(code, customerID string) string {
	return fmt.Sprintf("coupon:usage:%s:%s", NormalizeCode(code), customerID)
}

// CountByCustomer implements UsageCounter. A missing counter means no redemptions.
func (u RedisUsage) CountByCustomer(ctx context.Context, code, customerID string) (int, error) {
	if u.Client == nil {
		return 0, errors.New("coupon usage store not configured")
	}
	n, err := u.Client.Get(ctx, UsageKey(code, customerID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("coupon usage: %w", err)
	}
	return n, nil
}
