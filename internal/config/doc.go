// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package config provides centralized configuration management for the inventory
availability service.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file (CONFIG_PATH, config.yaml, /etc/cardmarket/config.yaml)
  - Environment variables, mapped explicitly in envMappings

# Environment Variables

Upstream (UpstreamConfig):
  - UPSTREAM_BASE_URL: Commerce backend base URL (required)
  - UPSTREAM_API_TOKEN: Bearer token for the admin endpoint
  - UPSTREAM_PUBLISHABLE_KEY: Publishable key for the store endpoint
  - UPSTREAM_TIMEOUT: Budget per variant lookup, both endpoints and retries (default: 5s)
  - UPSTREAM_MAX_RETRIES: Extra attempts after HTTP 429 (default: 2)
  - UPSTREAM_RATE_LIMIT_RPS: Outbound requests per second, 0 disables (default: 0)

Cache (CacheConfig):
  - CACHE_BACKEND: redis, badger or memory (default: redis)
  - CACHE_KEY_VERSION: Key namespace version (default: v1)
  - CACHE_TTL: Single lookup TTL (default: 30s)
  - CACHE_BATCH_TTL: Batch lookup TTL (default: 15s)
  - CACHE_STALE_TTL: Stale fallback copy TTL (default: 10m)
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_POOL_SIZE
  - BADGER_PATH, BADGER_IN_MEMORY

Circuit Breaker (BreakerConfig):
  - BREAKER_FAILURE_THRESHOLD: Failure ratio that opens the breaker (default: 0.5)
  - BREAKER_MIN_REQUESTS: Calls required before the ratio applies (default: 5)
  - BREAKER_WINDOW: Rolling window (default: 60s)
  - BREAKER_COOLDOWN: Open duration before a probe (default: 30s)

Batch (BatchConfig):
  - BATCH_CONCURRENCY: Upstream calls per group (default: 5)
  - BATCH_MAX_SIZE: Max ids per batch lookup or pre-warm (default: 50)
  - INVALIDATE_MAX_SIZE: Max ids per invalidation (default: 100)

Pre-warm (PreWarmConfig):
  - PREWARM_ENABLED, PREWARM_INTERVAL, PREWARM_VARIANT_IDS (comma separated)

Server, Security and Logging:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("Cache backend: %s\n", cfg.Cache.Backend)

# Thread Safety

Config structs are immutable after Load() and safe for concurrent reads.
*/
package config
