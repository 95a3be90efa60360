// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package cache provides the key/value stores behind the availability cache.

# Backends

  - RedisStore: go-redis v9. GET, MGET, pipelined SET EX, DEL, SCAN. Shared by
    every replica; the production default.
  - BadgerStore: embedded Badger v4 with native per-entry TTL. For single-node
    deployments without Redis.
  - MemoryStore: process-local map with TTL and a background sweep. For
    development and tests.

All three satisfy Store. NewStore picks one from config.CacheConfig.

# Keys

Keyspace builds versioned keys so a format change can orphan old entries by
bumping the version:

	inventory:v1:variant:{variantID}   fresh availability
	inventory:v1:stale:{variantID}     longer-lived copy for stale fallback

# Errors

Backend failures are returned as *StoreError, which matches
ErrCacheUnavailable under errors.Is. A cache miss is never an error.
*/
package cache
