package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(NewRedisCacheFromClient(client), ttl), mr
}

type cachedPayload struct {
	Total int    `json:"total"`
	Range string `json:"range"`
}

func TestCacheKey(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	assert.Equal(t, "analytics", cache.Key(CacheKeyAnalytics))
	assert.Equal(t, "analytics:models:7d", cache.Key(CacheKeyModelTrends, "7d"))
	assert.Equal(t, "analytics:reviews:30d", cache.Key(CacheKeyReviewTrends, "30D"))
}

func TestCacheSetGetRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	want := cachedPayload{Total: 42, Range: "7d"}
	require.NoError(t, cache.Set(ctx, "analytics:models:7d", want))

	var got cachedPayload
	found, err := cache.Get(ctx, "analytics:models:7d", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestCacheMissIsNotAnError(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	var got cachedPayload
	found, err := cache.Get(context.Background(), "analytics:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "analytics", cachedPayload{Total: 1}))
	mr.FastForward(31 * time.Second)

	var got cachedPayload
	found, err := cache.Get(ctx, "analytics", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheInvalidatePrefix(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "analytics:models:7d", cachedPayload{Total: 1}))
	require.NoError(t, cache.Set(ctx, "analytics:models:30d", cachedPayload{Total: 2}))
	require.NoError(t, cache.Set(ctx, "analytics:reviews:7d", cachedPayload{Total: 3}))

	require.NoError(t, cache.InvalidatePrefix(ctx, CacheKeyModelTrends))

	var got cachedPayload
	found, err := cache.Get(ctx, "analytics:models:7d", &got)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = cache.Get(ctx, "analytics:reviews:7d", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCacheCorruptEntryIsAnError(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("analytics", "{not json"))

	var got cachedPayload
	found, err := cache.Get(context.Background(), "analytics", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
