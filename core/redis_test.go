package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type cachedPage struct {
	Keys  []string `msgpack:"keys"`
	Total int64    `msgpack:"total"`
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	logger := zaptest.NewLogger(t).Sugar()
	cache := NewRedisCache(mr.Addr(), "", 0, 10, "search:", logger)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()

	in := cachedPage{Keys: []string{"a", "b"}, Total: 42}
	require.NoError(t, cache.Set(ctx, "query:evil|type:domain", in, time.Minute))

	var out cachedPage
	found, err := cache.Get(ctx, "query:evil|type:domain", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestRedisCache_Get_NotFound(t *testing.T) {
	cache, _ := newTestRedisCache(t)

	var out cachedPage
	found, err := cache.Get(context.Background(), "nonexistent_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_StorageKey(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	long := strings.Repeat("tags:c2,", 500)
	key := cache.StorageKey(long)
	assert.True(t, strings.HasPrefix(key, "search:"))
	assert.Len(t, key, len("search:")+64)
	assert.Equal(t, key, cache.StorageKey(long))
	assert.NotEqual(t, key, cache.StorageKey(long+"x"))

	require.NoError(t, cache.Set(ctx, long, cachedPage{Total: 1}, time.Minute))
	assert.True(t, mr.Exists(key))
}

func TestRedisCache_Expiration(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedPage{Total: 1}, time.Minute))
	ttl, err := cache.GetTTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(2 * time.Minute)

	var out cachedPage
	found, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Invalidate(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("unrelated", "keep"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, k, cachedPage{Total: 1}, time.Minute))
	}

	require.NoError(t, cache.Invalidate(ctx))

	var out cachedPage
	found, err := cache.Get(ctx, "a", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisCache_ConnectionFailure(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	mr.Close()

	var out cachedPage
	found, err := cache.Get(context.Background(), "k", &out)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, cache.Ping(context.Background()))
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	require.NoError(t, mr.Set(cache.StorageKey("k"), "\xc1"))

	var out cachedPage
	found, err := cache.Get(context.Background(), "k", &out)
	assert.Error(t, err)
	assert.False(t, found)
}
