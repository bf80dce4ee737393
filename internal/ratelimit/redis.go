package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// incrementScript bumps the counter and starts the window on the first hit, atomically
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter stores window counters in Redis so every serving instance shares them.
// Each key holds the count and expires when its window ends.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLimiter creates a limiter whose keys are namespaced by prefix
func NewRedisLimiter(client redis.UniversalClient, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix}
}

var _ Limiter = (*RedisLimiter)(nil)

// Check reads the counter and its remaining TTL without modifying either
func (l *RedisLimiter) Check(ctx context.Context, key string, cfg Config) (Result, error) {
	k := l.prefix + key

	pipe := l.client.Pipeline()
	getCmd := pipe.Get(ctx, k)
	ttlCmd := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Result{}, fmt.Errorf("rate limit check %s: %w", key, err)
	}

	count, err := getCmd.Int()
	if errors.Is(err, redis.Nil) {
		return Result{Allowed: true, Remaining: cfg.Max - 1}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check %s: %w", key, err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		// Key without expiry (e.g. a crash between INCR and PEXPIRE): treat as a full window.
		ttl = cfg.Window
	}

	if count >= cfg.Max {
		return Result{Allowed: false, RetryAfterSeconds: retryAfterSeconds(ttl)}, nil
	}
	return Result{Allowed: true, Remaining: cfg.Max - count - 1}, nil
}

// Increment consumes one action from the key's current window
func (l *RedisLimiter) Increment(ctx context.Context, key string, cfg Config) error {
	window := cfg.Window.Milliseconds()
	if window <= 0 {
		window = 1
	}
	if err := incrementScript.Run(ctx, l.client, []string{l.prefix + key}, window).Err(); err != nil {
		return fmt.Errorf("rate limit increment %s: %w", key, err)
	}
	return nil
}
