package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/yazameet/yazameet-backend/config"
)

// RateLimiter decides whether id may hit resource again.
type RateLimiter interface {
	Allow(ctx context.Context, resource, id string) (bool, error)
}

// RedisRateLimiter is a fixed window counter shared by every instance.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow fails open when Redis errors; the error is returned for logging.
func (l *RedisRateLimiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and EXPIRE NX run in one transaction so a counter never outlives
	// its window, including counters left without a TTL by older code.
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return true, err
	}
	return incr.Val() <= int64(l.limit), nil
}

// MemoryRateLimiter keeps a token bucket per key inside the process.
type MemoryRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
	}
}

func (l *MemoryRateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	return l.getLimiter(resource + ":" + id).Allow(), nil
}

// Cleanup drops every bucket once the map grows past maxKeys.
func (l *MemoryRateLimiter) Cleanup(maxKeys int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.limiters) > maxKeys {
		l.limiters = make(map[string]*rate.Limiter)
	}
}

// NewRateLimiter uses Redis when REDIS_URL is set and reachable, otherwise
// an in-process limiter.
func NewRateLimiter(ctx context.Context, cfg config.Config) RateLimiter {
	limit := config.GetInt(cfg, "RATE_LIMIT_PER_MINUTE", 20)

	redisURL := config.GetString(cfg, "REDIS_URL", "")
	if redisURL == "" {
		return NewMemoryRateLimiter(limit, time.Minute)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid REDIS_URL, using in-memory rate limiter")
		return NewMemoryRateLimiter(limit, time.Minute)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, using in-memory rate limiter")
		_ = rdb.Close()
		return NewMemoryRateLimiter(limit, time.Minute)
	}
	log.Info().Msg("Using Redis rate limiter")
	return NewRedisRateLimiter(rdb, limit, time.Minute)
}
