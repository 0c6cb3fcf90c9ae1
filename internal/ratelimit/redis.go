package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "eventreg:ratelimit:",
	}
}

// Allow increments the key's counter for the current window. The first hit
// of a window sets the expiry; later hits leave it alone.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := rl.prefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, rl.window)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	if count > rl.limit {
		retryAfter := ttl.Val()
		if retryAfter < 0 {
			retryAfter = rl.window
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true, Remaining: rl.limit - count}, nil
}
