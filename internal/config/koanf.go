// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cardmarket/config.yaml",
	"/etc/cardmarket/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:        "",
			Timeout:        5 * time.Second,
			MaxRetries:     2,
			RetryBaseDelay: 200 * time.Millisecond,
			RetryMaxDelay:  2 * time.Second,
			RateLimitRPS:   0, // Unlimited
			RateLimitBurst: 10,
		},
		Cache: CacheConfig{
			Backend:    CacheBackendRedis,
			KeyVersion: "v1",
			TTL:        30 * time.Second, // Inventory is volatile: seconds, not minutes
			BatchTTL:   15 * time.Second,
			StaleTTL:   10 * time.Minute,
			Redis: RedisConfig{
				Addr:         "localhost:6379",
				DB:           0,
				PoolSize:     20,
				DialTimeout:  2 * time.Second,
				ReadTimeout:  500 * time.Millisecond,
				WriteTimeout: 500 * time.Millisecond,
			},
			Badger: BadgerConfig{
				Path:     "/data/inventory-cache",
				InMemory: false,
			},
		},
		Breaker: BreakerConfig{
			FailureThreshold: 0.5,
			MinRequests:      5,
			Window:           time.Minute,
			Cooldown:         30 * time.Second,
		},
		Batch: BatchConfig{
			Concurrency:       5,
			MaxSize:           50,
			InvalidateMaxSize: 100,
		},
		PreWarm: PreWarmConfig{
			Enabled:    false,
			Interval:   5 * time.Minute,
			VariantIDs: []string{},
		},
		Server: ServerConfig{
			Port:    8080,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// UPSTREAM_BASE_URL -> upstream.base_url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"prewarm.variant_ids",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf config paths.
var envMappings = map[string]string{
	// Upstream commerce backend
	"upstream_base_url":         "upstream.base_url",
	"upstream_api_token":        "upstream.api_token",
	"upstream_publishable_key":  "upstream.publishable_key",
	"upstream_timeout":          "upstream.timeout",
	"upstream_max_retries":      "upstream.max_retries",
	"upstream_retry_base_delay": "upstream.retry_base_delay",
	"upstream_retry_max_delay":  "upstream.retry_max_delay",
	"upstream_rate_limit_rps":   "upstream.rate_limit_rps",
	"upstream_rate_limit_burst": "upstream.rate_limit_burst",

	// Cache
	"cache_backend":       "cache.backend",
	"cache_key_version":   "cache.key_version",
	"cache_ttl":           "cache.ttl",
	"cache_batch_ttl":     "cache.batch_ttl",
	"cache_stale_ttl":     "cache.stale_ttl",
	"redis_addr":          "cache.redis.addr",
	"redis_password":      "cache.redis.password",
	"redis_db":            "cache.redis.db",
	"redis_pool_size":     "cache.redis.pool_size",
	"redis_dial_timeout":  "cache.redis.dial_timeout",
	"redis_read_timeout":  "cache.redis.read_timeout",
	"redis_write_timeout": "cache.redis.write_timeout",
	"badger_path":         "cache.badger.path",
	"badger_in_memory":    "cache.badger.in_memory",

	// Circuit breaker
	"breaker_failure_threshold": "breaker.failure_threshold",
	"breaker_min_requests":      "breaker.min_requests",
	"breaker_window":            "breaker.window",
	"breaker_cooldown":          "breaker.cooldown",

	// Batch
	"batch_concurrency":   "batch.concurrency",
	"batch_max_size":      "batch.max_size",
	"invalidate_max_size": "batch.invalidate_max_size",

	// Pre-warm scheduler
	"prewarm_enabled":     "prewarm.enabled",
	"prewarm_interval":    "prewarm.interval",
	"prewarm_variant_ids": "prewarm.variant_ids",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return an empty string and are skipped, so unrelated
// environment does not pollute the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
