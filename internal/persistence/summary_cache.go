package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryCacheKey = "training-tracker:progress-summary"

// SummaryCache keeps the serialized progress summary in Redis. Every
// assignment mutation invalidates it; a missing or unreachable Redis
// degrades to cache misses.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache builds a cache over the shared Redis client.
func NewSummaryCache(r *Redis, ttl time.Duration) *SummaryCache {
	if r == nil || r.Client == nil {
		return &SummaryCache{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SummaryCache{client: r.Client, ttl: ttl}
}

// Get returns the cached payload, or ok=false on miss or error.
func (c *SummaryCache) Get(ctx context.Context) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set stores the payload with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, summaryCacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached summary.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, summaryCacheKey).Err()
}
