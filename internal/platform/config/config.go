// Package config loads service configuration from an optional YAML file and
// CRMDIR_* environment variables. Environment wins over the file; both win over
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CRMDIR"

// Location store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Server   Server         `mapstructure:"server"`
	Auth     Auth           `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Location Location       `mapstructure:"location"`
	Timeline Timeline       `mapstructure:"timeline"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Auth configures tenant access-token validation.
type Auth struct {
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL keeps every
// store in memory.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Location configures the location resolver and its remote store.
type Location struct {
	Store            string        `mapstructure:"store"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	BreakerFailures  int           `mapstructure:"breaker_failures"`
	BreakerSuccesses int           `mapstructure:"breaker_successes"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	// SeedStore upserts the bundled master dataset into the remote store at startup.
	SeedStore bool `mapstructure:"seed_store"`
}

type Timeline struct {
	Step int `mapstructure:"step"`
}

const devSigningKey = "dev-secret-key-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Development default; production deployments must override it.
	v.SetDefault("auth.jwt_signing_key", devSigningKey)
	v.SetDefault("auth.issuer", "crmdir")
	v.SetDefault("auth.audience", "crmdir-api")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("location.store", StoreMemory)
	v.SetDefault("location.fetch_timeout", 5*time.Second)
	v.SetDefault("location.breaker_failures", 5)
	v.SetDefault("location.breaker_successes", 3)
	v.SetDefault("location.breaker_cooldown", 30*time.Second)
	v.SetDefault("location.seed_store", false)

	v.SetDefault("timeline.step", 10)
}

// Load reads config.yaml from dir when present, then applies environment
// overrides such as CRMDIR_SERVER_ADDR or CRMDIR_LOCATION_STORE.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Location.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("location.store=postgres requires database.url")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return errors.New("location.store=redis requires redis.url")
		}
	default:
		return fmt.Errorf("unknown location.store %q", c.Location.Store)
	}
	if c.Auth.JWTSigningKey == "" {
		return errors.New("auth.jwt_signing_key is required")
	}
	if c.Timeline.Step < 1 {
		return errors.New("timeline.step must be positive")
	}
	return nil
}

// UsesDevSigningKey reports whether the built-in development key is in effect.
func (c Config) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}
