package core

import (
	"context"
	"fmt"
	"time"

	"threatshare/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vmihailenco/msgpack/v5"
)

// LocalCache is an in-process LRU cache with a single TTL for every entry.
// Values are stored encoded so callers never share mutable results.
type LocalCache struct {
	entries *expirable.LRU[string, []byte]
}

// NewLocalCache creates a cache holding at most size entries, each living for ttl
func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	return &LocalCache{entries: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get decodes the entry for key into dest
func (lc *LocalCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := lc.entries.Get(key)
	if !ok {
		metrics.CacheMisses.WithLabelValues("local").Inc()
		return false, nil
	}
	if err := msgpack.Unmarshal(data, dest); err != nil {
		metrics.CacheErrors.WithLabelValues("local", "unmarshal").Inc()
		lc.entries.Remove(key)
		return false, fmt.Errorf("failed to decode local cache entry: %w", err)
	}
	metrics.CacheHits.WithLabelValues("local").Inc()
	return true, nil
}

// Set stores value under key. The ttl argument is ignored in favor of the cache-wide TTL.
func (lc *LocalCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("local", "marshal").Inc()
		return fmt.Errorf("failed to encode local cache value: %w", err)
	}
	lc.entries.Add(key, data)
	return nil
}

// Invalidate drops every entry
func (lc *LocalCache) Invalidate(_ context.Context) error {
	lc.entries.Purge()
	return nil
}

// Len returns the number of live entries
func (lc *LocalCache) Len() int {
	return lc.entries.Len()
}
