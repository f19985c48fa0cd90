package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl"

// RateLimiter is a fixed-window request counter backed by Redis.
// Key format: rl:<scope>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per window for each key.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow counts one request for key. When the window is exhausted it returns
// allowed=false and the time until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, remaining int, retryAfter time.Duration, err error) {
	now := l.now()
	start := now.Truncate(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", rateLimitPrefix, key, start.Unix())

	var incr *redis.IntCmd
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit: %w", err)
	}

	count := incr.Val()
	if count > l.limit {
		return false, 0, start.Add(l.window).Sub(now), nil
	}
	return true, int(l.limit - count), 0, nil
}

// Limit reports the configured requests per window.
func (l *RateLimiter) Limit() int {
	return int(l.limit)
}
