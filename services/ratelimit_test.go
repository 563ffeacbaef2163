package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazameet/yazameet-backend/config"
)

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limiter := NewRedisRateLimiter(rdb, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "presign", "user-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "presign", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "presign", "user-2")
	require.NoError(t, err)
	assert.True(t, ok, "limits are per id")

	assert.True(t, mr.TTL("rl:presign:user-1") > 0)
	mr.FastForward(time.Minute)

	ok, err = limiter.Allow(ctx, "presign", "user-1")
	require.NoError(t, err)
	assert.True(t, ok, "window resets after expiry")
}

func TestRedisRateLimiterRepairsKeyWithoutTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set("rl:presign:user-1", "7"))

	limiter := NewRedisRateLimiter(rdb, 2, time.Minute)
	ok, err := limiter.Allow(context.Background(), "presign", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.TTL("rl:presign:user-1") > 0)

	mr.FastForward(time.Minute)
	ok, err = limiter.Allow(context.Background(), "presign", "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiterKeepsWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limiter := NewRedisRateLimiter(rdb, 5, time.Minute)
	_, err := limiter.Allow(context.Background(), "presign", "user-1")
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	_, err = limiter.Allow(context.Background(), "presign", "user-1")
	require.NoError(t, err)

	// Later hits do not push the window out
	assert.Equal(t, 20*time.Second, mr.TTL("rl:presign:user-1"))
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	ok, err := NewRedisRateLimiter(rdb, 1, time.Minute).Allow(context.Background(), "presign", "user-1")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestMemoryRateLimiter(t *testing.T) {
	limiter := NewMemoryRateLimiter(2, time.Minute)
	ctx := context.Background()

	ok, _ := limiter.Allow(ctx, "presign", "user-1")
	assert.True(t, ok)
	ok, _ = limiter.Allow(ctx, "presign", "user-1")
	assert.True(t, ok)
	ok, _ = limiter.Allow(ctx, "presign", "user-1")
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "presign", "user-2")
	assert.True(t, ok)

	limiter.Cleanup(1)
	ok, _ = limiter.Allow(ctx, "presign", "user-1")
	assert.True(t, ok)
}

func TestNewRateLimiterSelection(t *testing.T) {
	ctx := context.Background()
	_, memory := NewRateLimiter(ctx, config.Config{}).(*MemoryRateLimiter)
	assert.True(t, memory)

	mr := miniredis.RunT(t)
	_, isRedis := NewRateLimiter(ctx, config.Config{"REDIS_URL": "redis://" + mr.Addr()}).(*RedisRateLimiter)
	assert.True(t, isRedis)

	_, fallback := NewRateLimiter(ctx, config.Config{"REDIS_URL": "::bad::"}).(*MemoryRateLimiter)
	assert.True(t, fallback)
}
