// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Upstream: commerce backend base URL, credentials, timeout, retry, rate limit
//  2. Cache: backend selection (redis, badger, memory), key version, TTLs
//  3. Breaker: failure-rate threshold, rolling window, cool-down
//  4. Batch: concurrency window and request size limits
//  5. PreWarm: periodic cache pre-warming of hot variants
//  6. Server, Security, Logging
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Upstream UpstreamConfig `koanf:"upstream"`
	Cache    CacheConfig    `koanf:"cache"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Batch    BatchConfig    `koanf:"batch"`
	PreWarm  PreWarmConfig  `koanf:"prewarm"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UpstreamConfig holds commerce backend connection settings.
type UpstreamConfig struct {
	// BaseURL of the commerce backend, without trailing slash (required).
	BaseURL string `koanf:"base_url"`

	// APIToken is sent as a bearer credential on the admin endpoint.
	// Optional: when empty the admin endpoint is still tried unauthenticated.
	APIToken string `koanf:"api_token"`

	// PublishableKey is sent as x-publishable-api-key on the store endpoint.
	PublishableKey string `koanf:"publishable_key"`

	// Timeout bounds one variant lookup: the admin call, the store fallback
	// and any 429 retries share it.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the number of extra attempts per endpoint after an HTTP 429.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay and RetryMaxDelay bound the exponential backoff for 429s.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	RetryMaxDelay  time.Duration `koanf:"retry_max_delay"`

	// RateLimitRPS caps outbound requests per second for this process (0 = unlimited).
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// Cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendBadger = "badger"
	CacheBackendMemory = "memory"
)

// CacheConfig holds availability cache settings.
type CacheConfig struct {
	Backend string `koanf:"backend"` // redis, badger, memory

	// KeyVersion is embedded in every key (inventory:{version}:variant:{id}).
	// Bumping it orphans all existing entries after a format change.
	KeyVersion string `koanf:"key_version"`

	// TTL applies to entries written by single lookups.
	TTL time.Duration `koanf:"ttl"`

	// BatchTTL applies to entries written by batch lookups; kept shorter than TTL.
	BatchTTL time.Duration `koanf:"batch_ttl"`

	// StaleTTL is how long the stale shadow copy survives for fallback reads.
	StaleTTL time.Duration `koanf:"stale_ttl"`

	Redis  RedisConfig  `koanf:"redis"`
	Badger BadgerConfig `koanf:"badger"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// BadgerConfig holds embedded Badger settings.
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// BreakerConfig holds circuit breaker tuning.
type BreakerConfig struct {
	// FailureThreshold is the failure ratio (0..1] at which the breaker opens.
	FailureThreshold float64 `koanf:"failure_threshold"`

	// MinRequests is the minimum number of calls in the window before the
	// failure ratio is considered.
	MinRequests uint32 `koanf:"min_requests"`

	// Window is the rolling measurement window in the closed state.
	Window time.Duration `koanf:"window"`

	// Cooldown is how long the breaker stays open before allowing a probe.
	Cooldown time.Duration `koanf:"cooldown"`
}

// BatchConfig holds batch lookup limits.
type BatchConfig struct {
	// Concurrency is the size of each group of in-flight upstream calls.
	Concurrency int `koanf:"concurrency"`

	// MaxSize is the maximum number of ids accepted by batch lookups and pre-warm.
	MaxSize int `koanf:"max_size"`

	// InvalidateMaxSize is the maximum number of ids accepted by invalidation.
	InvalidateMaxSize int `koanf:"invalidate_max_size"`
}

// PreWarmConfig holds the periodic pre-warm scheduler settings.
type PreWarmConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	VariantIDs []string      `koanf:"variant_ids"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load loads configuration via LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
