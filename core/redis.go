package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"threatshare/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Maximum encoded size of a single cached value
const maxCacheValueSize = 10 * 1024 * 1024 // 10MB

// RedisCache provides a Redis-based cache shared by every API instance
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.SugaredLogger
}

// NewRedisCache creates a new Redis cache instance. Keys are stored under prefix.
func NewRedisCache(addr, password string, db, poolSize int, prefix string, logger *zap.SugaredLogger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Ping tests the Redis connection
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// StorageKey maps a logical cache key onto the fixed-length Redis key it is stored under
func (rc *RedisCache) StorageKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return rc.prefix + hex.EncodeToString(sum[:])
}

// Set stores a msgpack-encoded value in the cache with expiration
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		rc.logger.Errorw("Failed to encode cache value", "key", key, "error", err)
		metrics.CacheErrors.WithLabelValues("redis", "marshal").Inc()
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if len(data) > maxCacheValueSize {
		metrics.CacheErrors.WithLabelValues("redis", "size_limit").Inc()
		return fmt.Errorf("cache value size %d bytes exceeds maximum allowed size %d bytes", len(data), maxCacheValueSize)
	}

	if err := rc.client.Set(ctx, rc.StorageKey(key), data, expiration).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Get retrieves a value from the cache into dest. A missing key is (false, nil).
func (rc *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, rc.StorageKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMisses.WithLabelValues("redis").Inc()
			return false, nil
		}
		metrics.CacheErrors.WithLabelValues("redis", "get").Inc()
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if err := msgpack.Unmarshal(data, dest); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "unmarshal").Inc()
		return false, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true, nil
}

// Delete removes a key from the cache
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.StorageKey(key)).Err()
}

// Invalidate drops every entry under the cache prefix.
// Called after writes that can change search results.
func (rc *RedisCache) Invalidate(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "scan").Inc()
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "delete").Inc()
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	rc.logger.Debugw("Invalidated search cache", "keys", len(keys))
	return nil
}

// GetTTL returns the remaining TTL for a key
func (rc *RedisCache) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rc.client.TTL(ctx, rc.StorageKey(key)).Result()
}
