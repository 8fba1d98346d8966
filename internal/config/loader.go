// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration: defaults, then the optional YAML
// file at path (empty path skips the file), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	mergeEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// mergeEnv applies QUILL_* environment overrides on top of cfg.
func mergeEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "QUILL_LISTEN_ADDR")
	setString(&cfg.DataDir, "QUILL_DATA_DIR")
	setString(&cfg.PostsDir, "QUILL_POSTS_DIR")
	setString(&cfg.LogLevel, "QUILL_LOG_LEVEL")

	if v, ok := os.LookupEnv("QUILL_CACHE_BACKEND"); ok {
		cfg.Cache.Backend = CacheBackend(strings.ToLower(strings.TrimSpace(v)))
	}
	setDuration(&cfg.Cache.TTL, "QUILL_CACHE_TTL")
	setString(&cfg.Cache.RedisAddr, "QUILL_REDIS_ADDR")
	setInt(&cfg.Cache.RedisDB, "QUILL_REDIS_DB")
	setString(&cfg.Cache.BadgerDir, "QUILL_BADGER_DIR")

	setDuration(&cfg.SessionTTL, "QUILL_SESSION_TTL")

	setBool(&cfg.RateLimit.Enabled, "QUILL_RATELIMIT_ENABLED")
	setInt(&cfg.RateLimit.GlobalRPM, "QUILL_RATELIMIT_GLOBAL_RPM")
	setFloat(&cfg.RateLimit.GenerateRPS, "QUILL_RATELIMIT_GENERATE_RPS")
	setInt(&cfg.RateLimit.GenerateBurst, "QUILL_RATELIMIT_GENERATE_BURST")

	setCSV(&cfg.TrustedProxies, "QUILL_TRUSTED_PROXIES")
	setCSV(&cfg.AllowedOrigins, "QUILL_ALLOWED_ORIGINS")

	setBool(&cfg.Tracing.Enabled, "QUILL_TRACING_ENABLED")
	setString(&cfg.Tracing.Exporter, "QUILL_TRACING_EXPORTER")
	setString(&cfg.Tracing.Endpoint, "QUILL_TRACING_ENDPOINT")
	setFloat(&cfg.Tracing.SamplingRate, "QUILL_TRACING_SAMPLING_RATE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			*dst = d
		}
	}
}

func setCSV(dst *[]string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
