// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package main is the entry point for the Cardmarket inventory availability server.

The server answers "can this card variant be sold right now, and how many?"
from a short-lived cache in front of the commerce backend, protected by a
circuit breaker, and degrades to stale or conservative answers when the
backend is unhealthy.

# Application Architecture

	RootSupervisor ("cardmarket")
	├── CacheSupervisor ("cache-layer")
	│   └── Pre-warm scheduler (PREWARM_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON/console output
 3. Cache: Redis, embedded Badger, or in-process memory (CACHE_BACKEND)
 4. Upstream: commerce HTTP client wrapped in a gobreaker circuit breaker
 5. Availability service
 6. HTTP router and server
 7. Supervisor tree (suture v4)

# Configuration

Required:
  - UPSTREAM_BASE_URL: commerce backend base URL

Common:
  - UPSTREAM_API_TOKEN: bearer token for the admin variant endpoint
  - UPSTREAM_PUBLISHABLE_KEY: storefront key for the store variant endpoint
  - CACHE_BACKEND: redis (default), badger, memory
  - REDIS_ADDR: Redis address (default localhost:6379)
  - CACHE_TTL, CACHE_BATCH_TTL, CACHE_STALE_TTL
  - BREAKER_FAILURE_THRESHOLD, BREAKER_MIN_REQUESTS, BREAKER_WINDOW, BREAKER_COOLDOWN
  - PREWARM_ENABLED, PREWARM_INTERVAL, PREWARM_VARIANT_IDS

# Example Usage

	export UPSTREAM_BASE_URL=http://commerce:9000
	export UPSTREAM_API_TOKEN=your-admin-token
	export REDIS_ADDR=redis:6379
	./cardmarket

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree: the HTTP server stops
accepting connections and drains in-flight requests within HTTP_TIMEOUT,
then the cache is closed.
*/
package main
