package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to REDIS_ADDR or skips the test
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis limiter tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	return client
}

func TestRedisLimiter_WindowLifecycle(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	l := NewRedisLimiter(client, "test:"+uuid.NewString()+":")
	cfg := Config{Max: 2, Window: 1000 * time.Millisecond}

	res, err := l.Check(ctx, GlobalKey, cfg)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)

	require.NoError(t, l.Increment(ctx, GlobalKey, cfg))
	require.NoError(t, l.Increment(ctx, GlobalKey, cfg))

	res, err = l.Check(ctx, GlobalKey, cfg)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 1, res.RetryAfterSeconds)

	time.Sleep(1100 * time.Millisecond)
	res, err = l.Check(ctx, GlobalKey, cfg)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisLimiter_CheckDoesNotCreateKey(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"
	l := NewRedisLimiter(client, prefix)

	_, err := l.Check(ctx, "fp:abc", Config{Max: 1, Window: time.Minute})
	require.NoError(t, err)

	n, err := client.Exists(ctx, prefix+"fp:abc").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
