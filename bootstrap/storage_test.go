package bootstrap

import (
	"context"
	"testing"
	"time"

	"threatshare/config"
	"threatshare/core"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute
	cfg.Cache.LocalSize = 100
	cfg.Cache.LocalTTL = 30 * time.Second
	cfg.Cache.BreakerFailures = 3
	cfg.Cache.BreakerCooldown = time.Second
	cfg.Redis.KeyPrefix = "test:search:"
	cfg.Redis.PoolSize = 2
	return cfg
}

func TestInitStorage_Memory(t *testing.T) {
	sugar := zaptest.NewLogger(t).Sugar()
	components, err := InitStorage(context.Background(), testConfig(), sugar)
	require.NoError(t, err)
	require.NotNil(t, components.IOCs)
	assert.Nil(t, components.MongoDB)

	ioc := core.NewIOC(core.IOCTypeDomain, "evil.example.com", core.ThreatLevelHigh, 80)
	require.NoError(t, components.IOCs.CreateIOC(context.Background(), ioc))
	assert.NoError(t, components.IOCs.HealthCheck(context.Background()))
	assert.NoError(t, components.Close(context.Background()))
}

func TestInitStorage_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "cassandra"

	_, err := InitStorage(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	assert.ErrorContains(t, err, "cassandra")
}

func TestInitCache(t *testing.T) {
	sugar := zaptest.NewLogger(t).Sugar()
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cache.Enabled = false
		components, err := InitCache(ctx, cfg, sugar)
		require.NoError(t, err)
		assert.Nil(t, components)
		assert.NoError(t, components.Ping(ctx))
		assert.NoError(t, components.Close())
	})

	t.Run("local only", func(t *testing.T) {
		components, err := InitCache(ctx, testConfig(), sugar)
		require.NoError(t, err)
		require.NotNil(t, components.Cache)
		assert.Nil(t, components.Redis)
		assert.NoError(t, components.Ping(ctx))

		require.NoError(t, components.Cache.Set(ctx, "k", map[string]int{"n": 1}, time.Minute))
		var got map[string]int
		found, err := components.Cache.Get(ctx, "k", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 1, got["n"])
	})

	t.Run("with redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = mr.Addr()

		components, err := InitCache(ctx, cfg, sugar)
		require.NoError(t, err)
		t.Cleanup(func() { _ = components.Close() })
		require.NotNil(t, components.Redis)
		require.NotNil(t, components.Shared)
		assert.NoError(t, components.Ping(ctx))

		require.NoError(t, components.Cache.Set(ctx, "k", "v", time.Minute))
		assert.True(t, mr.Exists(components.Redis.StorageKey("k")))
	})

	t.Run("unreachable redis is tolerated", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig()
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = addr

		components, err := InitCache(ctx, cfg, sugar)
		require.NoError(t, err)
		t.Cleanup(func() { _ = components.Close() })
		assert.Error(t, components.Ping(ctx))
	})

	t.Run("invalid breaker config", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = mr.Addr()
		cfg.Cache.BreakerFailures = 0

		_, err := InitCache(ctx, cfg, sugar)
		assert.ErrorContains(t, err, "breaker")
	})
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryDelay(1))
	assert.Equal(t, 4*time.Second, retryDelay(2))
	assert.Equal(t, 8*time.Second, retryDelay(3))
	assert.Equal(t, 8*time.Second, retryDelay(7))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "warn", ParseLevel("WARN").String())
	assert.Equal(t, "info", ParseLevel("verbose").String())
	assert.Equal(t, "info", ParseLevel("").String())
}
