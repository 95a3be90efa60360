// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"sync/atomic"
	"time"

	"github.com/tomtom215/cardmarket/internal/models"
)

// Stats holds running counters since process start. All fields are atomics
// so lookups never contend on a lock.
type Stats struct {
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	upstreamRequests  atomic.Int64
	upstreamSuccesses atomic.Int64
	upstreamNanos     atomic.Int64
	lastSyncUnixNano  atomic.Int64 // 0 = never
}

func (s *Stats) recordCacheHit()  { s.cacheHits.Add(1) }
func (s *Stats) recordCacheMiss() { s.cacheMisses.Add(1) }

func (s *Stats) recordUpstream(d time.Duration, ok bool) {
	s.upstreamRequests.Add(1)
	s.upstreamNanos.Add(int64(d))
	if ok {
		s.upstreamSuccesses.Add(1)
	}
}

func (s *Stats) markSync(t time.Time) {
	s.lastSyncUnixNano.Store(t.UnixNano())
}

// Snapshot returns the current counters. totalKeys is supplied by the caller
// because it comes from the cache, not from this process.
func (s *Stats) Snapshot(totalKeys int64) models.InventoryStats {
	hits := s.cacheHits.Load()
	misses := s.cacheMisses.Load()
	requests := s.upstreamRequests.Load()
	successes := s.upstreamSuccesses.Load()
	nanos := s.upstreamNanos.Load()

	out := models.InventoryStats{
		TotalCachedKeys:  totalKeys,
		UpstreamRequests: requests,
	}
	if lookups := hits + misses; lookups > 0 {
		out.CacheHitRate = float64(hits) / float64(lookups)
		out.CacheMissRate = float64(misses) / float64(lookups)
	}
	if requests > 0 {
		out.UpstreamSuccessRate = float64(successes) / float64(requests)
		out.AvgResponseTimeMs = float64(nanos) / float64(requests) / float64(time.Millisecond)
	}
	if ns := s.lastSyncUnixNano.Load(); ns != 0 {
		t := time.Unix(0, ns).UTC()
		out.LastSyncAt = &t
	}
	return out
}
