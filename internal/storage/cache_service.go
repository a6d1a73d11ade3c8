package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService provides JSON caching for computed analytics responses.
// Entity reads always hit Postgres; only aggregate queries are cached.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// Cache key prefixes
const (
	CacheKeyAnalytics    = "analytics"
	CacheKeyModelTrends  = "analytics:models"
	CacheKeyReviewTrends = "analytics:reviews"
)

// Key builds a cache key from a prefix and parameters.
// Format: <prefix>:<param1>:<param2>:...
func (c *CacheService) Key(prefix string, params ...string) string {
	if len(params) == 0 {
		return prefix
	}
	normalized := make([]string, len(params))
	for i, p := range params {
		normalized[i] = strings.ToLower(p)
	}
	return prefix + ":" + strings.Join(normalized, ":")
}

// Set stores a value as JSON with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.redis.Set(ctx, key, data, c.ttl)
}

// Get retrieves a cached value into dest, reporting whether it was found.
// A miss is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidatePrefix removes all keys under a prefix
func (c *CacheService) InvalidatePrefix(ctx context.Context, prefix string) error {
	keys, err := c.redis.Keys(ctx, prefix+"*")
	if err != nil {
		return fmt.Errorf("failed to find keys matching prefix: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}
