// SPDX-License-Identifier: MIT

// Package config loads and validates the service configuration.
// Precedence: defaults < YAML file < environment.
package config

import (
	"fmt"
	"time"
)

// CacheBackend selects the byte-cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheBadger CacheBackend = "badger"
	CacheNone   CacheBackend = "none"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`
	PostsDir   string `yaml:"posts_dir"`

	LogLevel string `yaml:"log_level"`

	Cache CacheConfig `yaml:"cache"`

	SessionTTL time.Duration `yaml:"session_ttl"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`

	TrustedProxies []string `yaml:"trusted_proxies"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	Tracing TracingConfig `yaml:"tracing"`
}

// CacheConfig configures the generated-image cache.
type CacheConfig struct {
	Backend   CacheBackend  `yaml:"backend"`
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	BadgerDir string        `yaml:"badger_dir"`
}

// RateLimitConfig configures HTTP rate limits.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// Global sliding-window limit across all endpoints.
	GlobalRPM int `yaml:"global_rpm"`
	// Token-bucket limit for the generation endpoints, per client IP.
	GenerateRPS   float64 `yaml:"generate_rps"`
	GenerateBurst int     `yaml:"generate_burst"`
}

// TracingConfig configures the optional OTLP trace exporter.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // "grpc" or "http"
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		ListenAddr: ":8080",
		DataDir:    "./data",
		PostsDir:   "./posts",
		LogLevel:   "info",
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     1 * time.Hour,
		},
		SessionTTL: 24 * time.Hour,
		RateLimit: RateLimitConfig{
			Enabled:       true,
			GlobalRPM:     600,
			GenerateRPS:   10,
			GenerateBurst: 20,
		},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			SamplingRate: 1.0,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if c.PostsDir == "" {
		return fmt.Errorf("config: posts_dir must not be empty")
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("config: cache backend %q requires redis_addr", c.Cache.Backend)
		}
	case CacheBadger:
		if c.Cache.BadgerDir == "" {
			return fmt.Errorf("config: cache backend %q requires badger_dir", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache ttl must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.GlobalRPM <= 0 {
			return fmt.Errorf("config: global_rpm must be positive when rate limiting is enabled")
		}
		if c.RateLimit.GenerateRPS <= 0 || c.RateLimit.GenerateBurst <= 0 {
			return fmt.Errorf("config: generate_rps and generate_burst must be positive when rate limiting is enabled")
		}
	}
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("config: tracing requires an endpoint")
		}
		if c.Tracing.Exporter != "grpc" && c.Tracing.Exporter != "http" {
			return fmt.Errorf("config: unsupported tracing exporter %q", c.Tracing.Exporter)
		}
	}
	return nil
}
