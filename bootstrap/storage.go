package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"threatshare/config"
	"threatshare/core"
	"threatshare/storage"

	"go.uber.org/zap"
)

// retryDelays are the waits between MongoDB connection attempts; the
// last delay repeats when more retries are configured.
var retryDelays = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// StorageComponents holds all storage-related components.
type StorageComponents struct {
	MongoDB *storage.MongoDB // nil with the memory driver
	IOCs    storage.IOCStorage
}

// Close releases the underlying connections
func (s *StorageComponents) Close(ctx context.Context) error {
	if s == nil || s.MongoDB == nil {
		return nil
	}
	return s.MongoDB.Close(ctx)
}

// CacheComponents holds the search result cache and its shared tier
type CacheComponents struct {
	Redis  *core.RedisCache // nil when redis is disabled
	Shared *core.BreakerTier
	Cache  *core.TieredCache
}

// Ping checks the shared tier. Without one the cache is process local and always healthy.
func (c *CacheComponents) Ping(ctx context.Context) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Ping(ctx)
}

// Close releases the redis connection pool
func (c *CacheComponents) Close() error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Close()
}

// InitStorage opens the configured IOC backend.
func InitStorage(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*StorageComponents, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		sugar.Warn("Using in-memory IOC storage; data is lost on restart")
		return &StorageComponents{IOCs: storage.NewMemoryIOCStorage(sugar)}, nil
	case config.StorageDriverMongoDB, "":
		db, err := InitMongoDB(ctx, cfg, sugar)
		if err != nil {
			return nil, err
		}
		iocs := storage.NewMongoIOCStorage(db, cfg.MongoDB.Collection, cfg.MongoDB.OpTimeout, sugar)
		if err := iocs.EnsureIndexes(ctx); err != nil {
			_ = db.Close(context.Background())
			return nil, fmt.Errorf("failed to ensure IOC indexes: %w", err)
		}
		sugar.Infow("IOC indexes verified", "collection", cfg.MongoDB.Collection)
		return &StorageComponents{MongoDB: db, IOCs: iocs}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// InitMongoDB initializes the MongoDB connection with retry logic.
func InitMongoDB(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*storage.MongoDB, error) {
	maxRetries := cfg.MongoDB.ConnectRetries

	var db *storage.MongoDB
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			sugar.Infow("Retrying MongoDB connection",
				"attempt", attempt,
				"max_retries", maxRetries,
				"delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		db, lastErr = storage.NewMongoDB(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database,
			cfg.MongoDB.MaxPoolSize, cfg.MongoDB.ConnectTimeout, sugar)
		if lastErr == nil {
			break
		}

		sugar.Warnw("MongoDB connection attempt failed",
			"attempt", attempt+1,
			"error", lastErr)
	}

	if lastErr != nil {
		errMsg := ClassifyConnectionError("MongoDB", lastErr, RedactURI(cfg.MongoDB.URI))
		fmt.Fprintf(os.Stderr, "\n========================================\n")
		fmt.Fprintf(os.Stderr, "FATAL: MongoDB Connection Failed\n")
		fmt.Fprintf(os.Stderr, "========================================\n")
		fmt.Fprintf(os.Stderr, "%s\n", errMsg)
		fmt.Fprintf(os.Stderr, "========================================\n\n")
		return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", maxRetries+1, lastErr)
	}

	return db, nil
}

func retryDelay(attempt int) time.Duration {
	if attempt > len(retryDelays) {
		return retryDelays[len(retryDelays)-1]
	}
	return retryDelays[attempt-1]
}

// InitCache builds the search result cache: a process local tier, backed by
// redis behind a circuit breaker when redis is enabled. It returns nil
// when caching is disabled. An unreachable redis is logged and tolerated;
// the breaker keeps searches on storage until it recovers.
func InitCache(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*CacheComponents, error) {
	if !cfg.Cache.Enabled {
		sugar.Info("Search result caching disabled")
		return nil, nil
	}

	components := &CacheComponents{}
	local := core.NewLocalCache(cfg.Cache.LocalSize, cfg.Cache.LocalTTL)

	if !cfg.Redis.Enabled {
		components.Cache = core.NewTieredCache(local, nil)
		sugar.Infow("Search cache initialized", "tiers", "local", "local_size", cfg.Cache.LocalSize)
		return components, nil
	}

	redis := core.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		cfg.Redis.PoolSize, cfg.Redis.KeyPrefix, sugar)
	if err := redis.Ping(ctx); err != nil {
		sugar.Warnw("Redis unreachable at startup, continuing with degraded cache",
			"addr", cfg.Redis.Addr,
			"details", ClassifyConnectionError("Redis", err, cfg.Redis.Addr))
	}

	shared, err := core.NewBreakerTier(redis, core.BreakerConfig{
		MaxFailures: cfg.Cache.BreakerFailures,
		Cooldown:    cfg.Cache.BreakerCooldown,
	})
	if err != nil {
		_ = redis.Close()
		return nil, fmt.Errorf("invalid cache breaker config: %w", err)
	}

	components.Redis = redis
	components.Shared = shared
	components.Cache = core.NewTieredCache(local, shared)
	sugar.Infow("Search cache initialized", "tiers", "local+redis", "addr", cfg.Redis.Addr)
	return components, nil
}
