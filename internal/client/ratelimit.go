package client

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter: the first hit in a window sets the
// key's expiry, later hits only increment it. Over-limit hits re-arm a
// missing expiry.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

// Allow reports whether key is still under the limit in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + ":" + key

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if n > l.limit {
		// A failed Expire on the first hit leaves a counter that never resets.
		if err := l.ensureExpiry(ctx, k); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}

func (l *RedisLimiter) ensureExpiry(ctx context.Context, k string) error {
	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl != -1 {
		return nil
	}
	if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
		return fmt.Errorf("rate limit expire: %w", err)
	}
	return nil
}
