package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageDriverMongoDB = "mongodb"
	StorageDriverMemory  = "memory"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "THREATSHARE"

// MongoDBConfig configures the document store
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// ConnectRetries is how many times startup retries an unreachable server
	ConnectRetries int           `mapstructure:"connect_retries"`
	OpTimeout      time.Duration `mapstructure:"op_timeout"`
}

// StorageConfig selects the IOC backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // mongodb, memory
}

// RedisConfig configures the shared search cache tier
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CacheConfig configures search result caching
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	LocalSize       int           `mapstructure:"local_size"`
	LocalTTL        time.Duration `mapstructure:"local_ttl"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// SearchConfig bounds search and export work
type SearchConfig struct {
	ExportLimit  int           `mapstructure:"export_limit"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// APIConfig configures the HTTP server
type APIConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TLS            bool          `mapstructure:"tls"`
	CertFile       string        `mapstructure:"cert_file"`
	KeyFile        string        `mapstructure:"key_file"`
}

// AuthConfig configures bearer token verification
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	// SensitiveRoles may request includeSensitive results
	SensitiveRoles []string `mapstructure:"sensitive_roles"`
}

// SecretsConfig selects where secrets are read from
type SecretsConfig struct {
	Provider string `mapstructure:"provider"` // env, vault, aws
	Vault    struct {
		Address string `mapstructure:"address"`
		Token   string `mapstructure:"token"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"vault"`
	AWS struct {
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		SecretID  string `mapstructure:"secret_id"`
	} `mapstructure:"aws"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config holds all configuration for the threatshare service
type Config struct {
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Search  SearchConfig  `mapstructure:"search"`
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Secrets SecretsConfig `mapstructure:"secrets"`
	Log     LogConfig     `mapstructure:"log"`
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "threatshare")
	viper.SetDefault("mongodb.collection", "iocs")
	viper.SetDefault("mongodb.max_pool_size", 20)
	viper.SetDefault("mongodb.connect_timeout", 10*time.Second)
	viper.SetDefault("mongodb.connect_retries", 3)
	viper.SetDefault("mongodb.op_timeout", 5*time.Second)

	viper.SetDefault("storage.driver", StorageDriverMongoDB)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.key_prefix", "threatshare:search:")

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", 5*time.Minute)
	viper.SetDefault("cache.local_size", 1000)
	viper.SetDefault("cache.local_ttl", 30*time.Second)
	viper.SetDefault("cache.breaker_failures", 5)
	viper.SetDefault("cache.breaker_cooldown", 30*time.Second)

	viper.SetDefault("search.export_limit", 1000)
	viper.SetDefault("search.query_timeout", 10*time.Second)

	viper.SetDefault("api.port", 8081)
	viper.SetDefault("api.read_timeout", 15*time.Second)
	viper.SetDefault("api.write_timeout", 30*time.Second)
	viper.SetDefault("api.allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("api.tls", false)
	viper.SetDefault("api.cert_file", "server.crt")
	viper.SetDefault("api.key_file", "server.key")

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.issuer", "threatshare")
	viper.SetDefault("auth.sensitive_roles", []string{"admin", "analyst"})

	viper.SetDefault("secrets.provider", "env")
	viper.SetDefault("log.level", "info")
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Auth.Enabled && config.Auth.JWTSecret == "" {
		if err := LoadSecrets(&config); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// weakSecrets are rejected as JWT secrets
var weakSecrets = []string{
	"secret", "password", "changeme", "default", "admin",
	"jwt_secret", "supersecret", "mysecret", "test", "example",
}

// validateConfig validates the configuration for security and correctness
func validateConfig(config *Config) error {
	switch config.Storage.Driver {
	case StorageDriverMongoDB:
		if err := validateMongoURI(config.MongoDB.URI); err != nil {
			return err
		}
		if config.MongoDB.Database == "" {
			return fmt.Errorf("MongoDB database cannot be empty")
		}
		if config.MongoDB.Collection == "" {
			return fmt.Errorf("MongoDB collection cannot be empty")
		}
		if config.MongoDB.ConnectTimeout <= 0 {
			return fmt.Errorf("mongodb.connect_timeout must be positive, got %v", config.MongoDB.ConnectTimeout)
		}
		if config.MongoDB.ConnectRetries < 0 {
			return fmt.Errorf("mongodb.connect_retries cannot be negative, got %d", config.MongoDB.ConnectRetries)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q (must be %s or %s)", config.Storage.Driver, StorageDriverMongoDB, StorageDriverMemory)
	}

	if config.Redis.Enabled && config.Redis.Addr == "" {
		return fmt.Errorf("redis.addr cannot be empty when redis is enabled")
	}

	if config.Cache.Enabled {
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", config.Cache.TTL)
		}
		if config.Cache.LocalSize < 0 {
			return fmt.Errorf("cache.local_size cannot be negative, got %d", config.Cache.LocalSize)
		}
		if config.Redis.Enabled && config.Cache.BreakerFailures == 0 {
			return fmt.Errorf("cache.breaker_failures must be positive when redis is enabled")
		}
	}

	if config.Search.ExportLimit < 1 || config.Search.ExportLimit > 10000 {
		return fmt.Errorf("search.export_limit must be between 1 and 10000, got %d", config.Search.ExportLimit)
	}
	if config.Search.QueryTimeout <= 0 {
		return fmt.Errorf("search.query_timeout must be positive, got %v", config.Search.QueryTimeout)
	}

	if config.API.Port < 1 || config.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d (must be 1-65535)", config.API.Port)
	}
	if config.API.TLS && (config.API.CertFile == "" || config.API.KeyFile == "") {
		return fmt.Errorf("api.cert_file and api.key_file are required when TLS is enabled")
	}

	if config.Auth.Enabled {
		if err := validateJWTSecret(config.Auth.JWTSecret); err != nil {
			return err
		}
	}

	if os.Getenv(EnvPrefix+"_ENV") == "production" && !config.API.TLS {
		return fmt.Errorf("TLS must be enabled for the API in production (%s_ENV=production, api.tls=false)", EnvPrefix)
	}

	return nil
}

func validateMongoURI(uri string) error {
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return fmt.Errorf("invalid MongoDB URI: must start with mongodb:// or mongodb+srv://")
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid MongoDB URI: missing host")
	}
	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters (256 bits) when auth is enabled")
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Contains(lower, weak) {
			return fmt.Errorf("JWT secret appears to contain weak/default value: please use a cryptographically secure random string")
		}
	}
	return nil
}

// CanViewSensitive reports whether any of roles is allowed sensitive results
func (c *Config) CanViewSensitive(roles []string) bool {
	for _, role := range roles {
		for _, allowed := range c.Auth.SensitiveRoles {
			if strings.EqualFold(role, allowed) {
				return true
			}
		}
	}
	return false
}
