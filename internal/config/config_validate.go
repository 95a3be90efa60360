// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package config

import (
	"fmt"
	"net/url"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validCacheBackends = map[string]bool{
	CacheBackendRedis:  true,
	CacheBackendBadger: true,
	CacheBackendMemory: true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateUpstream(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if err := c.validateBatch(); err != nil {
		return err
	}

	if err := c.validatePreWarm(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateUpstream validates the commerce backend connection settings
func (c *Config) validateUpstream() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if err := validateHTTPURL(c.Upstream.BaseURL, "UPSTREAM_BASE_URL"); err != nil {
		return err
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.Upstream.Timeout)
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("UPSTREAM_MAX_RETRIES must be >= 0, got %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.RetryBaseDelay <= 0 || c.Upstream.RetryMaxDelay < c.Upstream.RetryBaseDelay {
		return fmt.Errorf("UPSTREAM_RETRY_BASE_DELAY must be positive and not exceed UPSTREAM_RETRY_MAX_DELAY")
	}
	if c.Upstream.RateLimitRPS < 0 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT_RPS must be >= 0")
	}
	if c.Upstream.RateLimitRPS > 0 && c.Upstream.RateLimitBurst < 1 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT_BURST must be >= 1 when rate limiting is enabled")
	}
	return nil
}

// validateHTTPURL checks that rawURL is an absolute http(s) URL without query
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}

// validateCache validates cache backend and TTL settings
func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: redis, badger, memory")
	}
	if c.Cache.KeyVersion == "" {
		return fmt.Errorf("CACHE_KEY_VERSION must not be empty")
	}
	if c.Cache.TTL <= 0 || c.Cache.BatchTTL <= 0 {
		return fmt.Errorf("CACHE_TTL and CACHE_BATCH_TTL must be positive")
	}
	if c.Cache.BatchTTL > c.Cache.TTL {
		return fmt.Errorf("CACHE_BATCH_TTL (%s) must not exceed CACHE_TTL (%s)", c.Cache.BatchTTL, c.Cache.TTL)
	}
	if c.Cache.StaleTTL < c.Cache.TTL {
		return fmt.Errorf("CACHE_STALE_TTL (%s) must be at least CACHE_TTL (%s)", c.Cache.StaleTTL, c.Cache.TTL)
	}

	switch c.Cache.Backend {
	case CacheBackendRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	case CacheBackendBadger:
		if !c.Cache.Badger.InMemory && c.Cache.Badger.Path == "" {
			return fmt.Errorf("BADGER_PATH is required when CACHE_BACKEND=badger and BADGER_IN_MEMORY=false")
		}
	}
	return nil
}

// validateBreaker validates circuit breaker tuning
func (c *Config) validateBreaker() error {
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be in (0, 1], got %v", c.Breaker.FailureThreshold)
	}
	if c.Breaker.MinRequests < 1 {
		return fmt.Errorf("BREAKER_MIN_REQUESTS must be >= 1")
	}
	if c.Breaker.Window < time.Second {
		return fmt.Errorf("BREAKER_WINDOW must be at least 1s, got %s", c.Breaker.Window)
	}
	if c.Breaker.Cooldown <= 0 {
		return fmt.Errorf("BREAKER_COOLDOWN must be positive")
	}
	return nil
}

// validateBatch validates batch size limits
func (c *Config) validateBatch() error {
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be >= 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.MaxSize < 1 {
		return fmt.Errorf("BATCH_MAX_SIZE must be >= 1, got %d", c.Batch.MaxSize)
	}
	if c.Batch.InvalidateMaxSize < 1 {
		return fmt.Errorf("INVALIDATE_MAX_SIZE must be >= 1, got %d", c.Batch.InvalidateMaxSize)
	}
	return nil
}

// validatePreWarm validates the pre-warm scheduler (only if enabled)
func (c *Config) validatePreWarm() error {
	if !c.PreWarm.Enabled {
		return nil
	}
	if c.PreWarm.Interval < time.Second {
		return fmt.Errorf("PREWARM_INTERVAL must be at least 1s, got %s", c.PreWarm.Interval)
	}
	if len(c.PreWarm.VariantIDs) == 0 {
		return fmt.Errorf("PREWARM_VARIANT_IDS is required when PREWARM_ENABLED=true")
	}
	if len(c.PreWarm.VariantIDs) > c.Batch.MaxSize {
		return fmt.Errorf("PREWARM_VARIANT_IDS has %d entries, maximum is BATCH_MAX_SIZE (%d)",
			len(c.PreWarm.VariantIDs), c.Batch.MaxSize)
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
		}
	}
	return nil
}

// validateLogging validates the logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
