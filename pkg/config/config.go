// Package config loads server configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration.
type Config struct {
	Metabase MetabaseConfig `yaml:"metabase"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// MetabaseConfig configures the upstream API client.
type MetabaseConfig struct {
	// URL is the Metabase site URL.
	URL string `yaml:"url"`
	// APIKey is sent as X-API-KEY.
	APIKey         string        `yaml:"api_key"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// CacheConfig configures the redis result cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	RedisURL string        `yaml:"redis_url"`
	RedisDB  int           `yaml:"redis_db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig configures the metrics and health listener.
type MetricsConfig struct {
	// Addr is the listen address, e.g. ":9090". Empty disables the listener.
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Metabase: MetabaseConfig{
			UserAgent:      "metabase-mcp/0.1.0",
			Timeout:        30 * time.Second,
			RateLimit:      10,
			RateBurst:      8,
			MaxRetries:     2,
			InitialBackoff: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path (if non-empty and present), applies environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults and environment only
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("METABASE_URL"); ok && v != "" {
		c.Metabase.URL = v
	}
	if v, ok := lookup("METABASE_API_KEY"); ok && v != "" {
		c.Metabase.APIKey = v
	}
	if v, ok := lookup("REDIS_URL"); ok && v != "" {
		c.Cache.RedisURL = v
		c.Cache.Enabled = true
	}
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Cache.RedisDB = db
	}
	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = ttl
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_PRETTY"); ok && v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Logging.Pretty = pretty
	}
	if v, ok := lookup("METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate checks the configuration for required and consistent values.
func (c *Config) Validate() error {
	if c.Metabase.URL == "" {
		return errors.New("metabase.url is required (or set METABASE_URL)")
	}
	u, err := url.Parse(c.Metabase.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("metabase.url must be an absolute http(s) url (got %q)", c.Metabase.URL)
	}
	if c.Metabase.APIKey == "" {
		return errors.New("metabase.api_key is required (or set METABASE_API_KEY)")
	}
	if c.Metabase.RateLimit <= 0 {
		return fmt.Errorf("metabase.rate_limit must be > 0 (got %v)", c.Metabase.RateLimit)
	}
	if c.Metabase.MaxRetries < 0 {
		return fmt.Errorf("metabase.max_retries must be >= 0 (got %d)", c.Metabase.MaxRetries)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Cache.Enabled {
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required when the cache is enabled")
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be > 0 (got %s)", c.Cache.TTL)
		}
	}
	return nil
}
