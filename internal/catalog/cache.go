package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"assessment-backend/internal/shared/telemetry"
)

const defaultCacheKey = "assessment:catalog:v1"

// CachedSource serves the catalog from Redis, loading from Next on a miss.
// Redis failures are logged and bypassed.
type CachedSource struct {
	Next  Source
	Redis *redis.Client
	Key   string
	TTL   time.Duration
}

// NewCachedSource wraps next with a Redis read-through cache. A nil client returns next unchanged.
func NewCachedSource(next Source, client *redis.Client, ttl time.Duration) Source {
	if client == nil {
		return next
	}
	return &CachedSource{Next: next, Redis: client, Key: defaultCacheKey, TTL: ttl}
}

func (c *CachedSource) Load(ctx context.Context) (Catalog, error) {
	if val, err := c.Redis.Get(ctx, c.Key).Bytes(); err == nil {
		cat, decodeErr := DecodeBytes(val)
		if decodeErr == nil {
			return cat, nil
		}
		telemetry.Warn("catalog.cache_corrupt", map[string]any{"key": c.Key, "error": decodeErr})
	} else if !errors.Is(err, redis.Nil) {
		telemetry.Warn("catalog.cache_get_failed", map[string]any{"key": c.Key, "error": err})
	}

	cat, err := c.Next.Load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cat)
	if err == nil {
		if setErr := c.Redis.Set(ctx, c.Key, data, c.TTL).Err(); setErr != nil {
			telemetry.Warn("catalog.cache_set_failed", map[string]any{"key": c.Key, "error": setErr})
		}
	}
	return cat, nil
}

// Invalidate drops the cached catalog.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.Redis.Del(ctx, c.Key).Err()
}
