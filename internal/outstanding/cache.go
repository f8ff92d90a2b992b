package outstanding

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

const cacheKeyPrefix = "outstanding:report:"

// Cache keeps rendered outstanding reports in redis for a short TTL. The
// report walks every party's ledger, so the dashboard polling it should not
// recompute on every hit. Cache misses and redis failures both fall through
// to a fresh computation.
type Cache struct {
	logger *slog.Logger
	client *redis.Client
	ttl    time.Duration
}

// NewCache builds the report cache.
func NewCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{logger: logger, client: client, ttl: ttl}
}

func cacheKey(category ledger.Category) string {
	if category == "" {
		return cacheKeyPrefix + "all"
	}
	return cacheKeyPrefix + string(category)
}

// Get returns the cached report for a category, if fresh.
func (c *Cache) Get(ctx context.Context, category ledger.Category) (*Report, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(category)).Bytes()
	if err != nil {
		return nil, false
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.Warn("discarding corrupt cached report", slog.Any("error", err))
		return nil, false
	}
	return &report, true
}

// Set stores a rendered report. Failures are logged, never surfaced.
func (c *Cache) Set(ctx context.Context, category ledger.Category, report *Report) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(category), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("caching outstanding report failed", slog.Any("error", err))
	}
}

// Invalidate drops every cached report. Called when due dates change.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("invalidating cached report failed", slog.Any("error", err))
		}
	}
}
