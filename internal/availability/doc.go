// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package availability answers "is this variant in stock, and how many?" for
the marketplace.

Service composes a cache.Store, a breaker-protected upstream (commerce.BreakerClient)
and running statistics:

  - CheckOne: read-through lookup with write-through on miss
  - CheckMany: batch lookup; one multi-get, then misses fetched in fixed
    concurrency groups with one batched cache write per group
  - Invalidate: removes fresh and stale entries so the next read is live
  - PreWarm: cache-bypassing batch fetch that only populates the cache
  - HealthCheck: cache ping plus one upstream probe
  - GetStats: hit rate, upstream success rate, latency, live key count

Fallback Chain:

When the upstream fails (timeout, HTTP error, or open circuit) a lookup is
answered, in order, from the fresh cache key, the stale shadow key
(inventory:{version}:stale:{id}), or models.ConservativeDefault. Lookups never
return an error for upstream reasons.

Availability Math:

	availableQuantity = max(0, total - reserved)
	available         = availableQuantity > 0 || allowsBackorder

Thread Safety:

Service is safe for concurrent use. Statistics are atomic counters and
concurrent misses for the same variant are collapsed with singleflight. The
shared upstream call outlives the caller that started it; each caller stops
waiting when its own context ends.
*/
package availability
