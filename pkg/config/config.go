package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Session SessionConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BALONIS_APP_ENV" required:"true"`
	Port         string `envconfig:"BALONIS_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"BALONIS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BALONIS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points at the Balonis REST backend.
type APIConfig struct {
	BaseURL string        `envconfig:"BALONIS_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"BALONIS_API_TIMEOUT" default:"10s"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvAPIBaseURL, a.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must have a host, got %q", EnvAPIBaseURL, a.BaseURL)
	}
	return nil
}

// RedisConfig is optional; an empty URL and address disables the lookup cache.
type RedisConfig struct {
	URL          string        `envconfig:"BALONIS_REDIS_URL"`
	Address      string        `envconfig:"BALONIS_REDIS_ADDR"`
	Password     string        `envconfig:"BALONIS_REDIS_PASSWORD"`
	DB           int           `envconfig:"BALONIS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BALONIS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BALONIS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BALONIS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BALONIS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"BALONIS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CatalogConfig struct {
	LookupCacheTTL time.Duration `envconfig:"BALONIS_LOOKUP_CACHE_TTL" default:"5m"`
	SettleTimeout  time.Duration `envconfig:"BALONIS_CATALOG_SETTLE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	MaxSessions  int           `envconfig:"BALONIS_SESSION_MAX" default:"1000"`
	TTL          time.Duration `envconfig:"BALONIS_SESSION_TTL" default:"30m"`
	SecureCookie bool          `envconfig:"BALONIS_SESSION_SECURE_COOKIE" default:"false"`
}

type CORSConfig struct {
	Origins []string `envconfig:"BALONIS_CORS_ORIGINS" default:"http://localhost:3000"`
}
