package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "k7Qp2vX9mLr4Tz8Wn3Hc6Jd1Fb5Gs0Ya"

// newTestConfig returns a valid Config for testing
func newTestConfig() Config {
	return Config{
		MongoDB: MongoDBConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "test",
			Collection:     "iocs",
			MaxPoolSize:    10,
			ConnectTimeout: 5 * time.Second,
			ConnectRetries: 3,
			OpTimeout:      5 * time.Second,
		},
		Storage: StorageConfig{Driver: StorageDriverMongoDB},
		Cache:   CacheConfig{Enabled: true, TTL: time.Minute, LocalSize: 100, LocalTTL: time.Second, BreakerFailures: 5, BreakerCooldown: time.Second},
		Search:  SearchConfig{ExportLimit: 1000, QueryTimeout: 10 * time.Second},
		API:     APIConfig{Port: 8081},
		Auth:    AuthConfig{SensitiveRoles: []string{"admin"}},
	}
}

// chdirTemp runs the test inside an empty directory with fresh viper state
func chdirTemp(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "threatshare", cfg.MongoDB.Database)
	assert.Equal(t, "iocs", cfg.MongoDB.Collection)
	assert.Equal(t, StorageDriverMongoDB, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Search.ExportLimit)
	assert.Equal(t, 10*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, 8081, cfg.API.Port)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"admin", "analyst"}, cfg.Auth.SensitiveRoles)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
storage:
  driver: memory
search:
  export_limit: 250
  query_timeout: 3s
cache:
  ttl: 2m
api:
  port: 9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("THREATSHARE_API_PORT", "9100")
	t.Setenv("THREATSHARE_REDIS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 250, cfg.Search.ExportLimit)
	assert.Equal(t, 3*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 9100, cfg.API.Port, "environment overrides the file")
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_AuthSecretFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("THREATSHARE_AUTH_ENABLED", "true")
	t.Setenv("THREATSHARE_AUTH_JWT_SECRET", testJWTSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, testJWTSecret, cfg.Auth.JWTSecret)
}

func TestLoadConfig_AuthWithoutSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("THREATSHARE_AUTH_ENABLED", "true")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to load JWT secret")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "memory driver skips mongo checks", mutate: func(c *Config) {
			c.Storage.Driver = StorageDriverMemory
			c.MongoDB.URI = ""
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: "invalid storage.driver"},
		{name: "bad mongo scheme", mutate: func(c *Config) { c.MongoDB.URI = "http://localhost" }, wantErr: "must start with mongodb://"},
		{name: "mongo without host", mutate: func(c *Config) { c.MongoDB.URI = "mongodb://" }, wantErr: "missing host"},
		{name: "empty database", mutate: func(c *Config) { c.MongoDB.Database = "" }, wantErr: "database cannot be empty"},
		{name: "empty collection", mutate: func(c *Config) { c.MongoDB.Collection = "" }, wantErr: "collection cannot be empty"},
		{name: "negative retries", mutate: func(c *Config) { c.MongoDB.ConnectRetries = -1 }, wantErr: "connect_retries"},
		{name: "redis without addr", mutate: func(c *Config) { c.Redis.Enabled = true }, wantErr: "redis.addr"},
		{name: "zero cache ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }, wantErr: "cache.ttl"},
		{name: "disabled cache ignores ttl", mutate: func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.TTL = 0
		}},
		{name: "export limit too large", mutate: func(c *Config) { c.Search.ExportLimit = 10001 }, wantErr: "search.export_limit"},
		{name: "export limit zero", mutate: func(c *Config) { c.Search.ExportLimit = 0 }, wantErr: "search.export_limit"},
		{name: "zero query timeout", mutate: func(c *Config) { c.Search.QueryTimeout = 0 }, wantErr: "search.query_timeout"},
		{name: "bad port", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: "invalid API port"},
		{name: "tls without cert", mutate: func(c *Config) {
			c.API.TLS = true
			c.API.CertFile = ""
		}, wantErr: "cert_file"},
		{name: "short jwt secret", mutate: func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.JWTSecret = "short"
		}, wantErr: "at least 32 characters"},
		{name: "weak jwt secret", mutate: func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.JWTSecret = "changeme-changeme-changeme-changeme"
		}, wantErr: "weak/default"},
		{name: "strong jwt secret", mutate: func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.JWTSecret = testJWTSecret
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateConfig_ProductionRequiresTLS(t *testing.T) {
	t.Setenv("THREATSHARE_ENV", "production")
	cfg := newTestConfig()
	assert.ErrorContains(t, validateConfig(&cfg), "TLS must be enabled")

	cfg.API.TLS = true
	cfg.API.CertFile = "server.crt"
	cfg.API.KeyFile = "server.key"
	assert.NoError(t, validateConfig(&cfg))
}

func TestConfig_CanViewSensitive(t *testing.T) {
	cfg := newTestConfig()
	cfg.Auth.SensitiveRoles = []string{"admin", "analyst"}

	assert.True(t, cfg.CanViewSensitive([]string{"viewer", "Analyst"}))
	assert.False(t, cfg.CanViewSensitive([]string{"viewer"}))
	assert.False(t, cfg.CanViewSensitive(nil))
}
