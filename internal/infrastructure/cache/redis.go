package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"DocForge/internal/domain"
	"DocForge/internal/ports"
)

const keyPrefix = "docforge:report:"

// RedisCache is a best-effort aggregate-report cache. Lookup and store
// failures are logged and treated as misses; analysis never depends on
// the cache being reachable.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.ReportCache = (*RedisCache)(nil)

// NewRedisCache connects to addr with the given entry TTL.
func NewRedisCache(addr string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached report for key, or false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.AggregateReport, bool) {
	key = keyPrefix + key
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache lookup failed", "error", err)
		return nil, false
	}

	var report domain.AggregateReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Warn("cache entry malformed, dropping", "key", key, "error", err)
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}

	return &report, true
}

// Set stores the report under key for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, report *domain.AggregateReport) {
	if report == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("cache marshal failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache store failed", "error", err)
	}
}
