package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store implementation backed by Redis, for deployments
// where several server instances must share one set of counters. Each
// window gets its own key; Redis expires old windows on its own.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key namespace. Defaults to "ratelimit".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

// NewRedisStore creates a Store that keeps counters in Redis.
func NewRedisStore(rdb redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

// Incr implements Store.
// INCR and EXPIRE are pipelined so a counter can never outlive its window
// by more than the grace period, even if the EXPIRE of a previous call was
// lost.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration, now time.Time) (int64, time.Time, error) {
	start := windowStart(now, window)
	reset := start.Add(window)

	redisKey := fmt.Sprintf("%s:%s:%d", s.prefix, key, start.Unix())

	pipe := s.rdb.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Keep the key one extra second past the window end so late readers in
	// the same window still observe the counter.
	pipe.Expire(ctx, redisKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, reset, fmt.Errorf("ratelimit: redis incr failed: %w", err)
	}

	return incr.Val(), reset, nil
}
