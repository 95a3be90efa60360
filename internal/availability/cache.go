// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cardmarket/internal/cache"
	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/metrics"
	"github.com/tomtom215/cardmarket/internal/models"
)

// Cache write modes, used as metric labels.
const (
	writeModeSingle = "single"
	writeModeBatch  = "batch"
)

// lookup reads the fresh entry for one variant. Store errors and undecodable
// values are reported as a miss.
func (s *Service) lookup(ctx context.Context, variantID string) (models.AvailabilityResult, bool) {
	raw, found, err := s.store.Get(ctx, s.keys.VariantKey(variantID))
	if err != nil {
		metrics.RecordCacheLookup(metrics.CacheResultError)
		metrics.RecordCacheError("get")
		logging.Ctx(ctx).Warn().Err(err).Str("variant_id", variantID).Msg("Cache read failed, bypassing cache")
		s.stats.recordCacheMiss()
		return models.AvailabilityResult{}, false
	}
	if !found {
		metrics.RecordCacheLookup(metrics.CacheResultMiss)
		s.stats.recordCacheMiss()
		return models.AvailabilityResult{}, false
	}

	res, ok := decodeResult(ctx, raw)
	if !ok {
		metrics.RecordCacheLookup(metrics.CacheResultMiss)
		s.stats.recordCacheMiss()
		return models.AvailabilityResult{}, false
	}

	metrics.RecordCacheLookup(metrics.CacheResultHit)
	s.stats.recordCacheHit()
	return res, true
}

// lookupMany issues one multi-get for ids and partitions them into hits and
// misses. Misses keep input order.
func (s *Service) lookupMany(ctx context.Context, ids []string) (map[string]models.AvailabilityResult, []string) {
	hits := make(map[string]models.AvailabilityResult, len(ids))

	values, err := s.store.MultiGet(ctx, s.keys.VariantKeys(ids))
	if err != nil {
		metrics.RecordCacheError("mget")
		logging.Ctx(ctx).Warn().Err(err).Int("count", len(ids)).Msg("Cache multi-get failed, bypassing cache")
		for range ids {
			metrics.RecordCacheLookup(metrics.CacheResultError)
			s.stats.recordCacheMiss()
		}
		return hits, ids
	}

	misses := make([]string, 0, len(ids))
	for i, id := range ids {
		if i < len(values) && values[i] != nil {
			if res, ok := decodeResult(ctx, values[i]); ok {
				metrics.RecordCacheLookup(metrics.CacheResultHit)
				s.stats.recordCacheHit()
				hits[id] = res
				continue
			}
		}
		metrics.RecordCacheLookup(metrics.CacheResultMiss)
		s.stats.recordCacheMiss()
		misses = append(misses, id)
	}
	return hits, misses
}

// write stores results under their fresh keys with ttl and under their stale
// shadow keys with the stale TTL, in one batched write. Failures are logged
// and otherwise ignored.
func (s *Service) write(ctx context.Context, mode string, ttl time.Duration, results ...models.AvailabilityResult) {
	if len(results) == 0 {
		return
	}

	entries := make([]cache.Entry, 0, 2*len(results))
	for i := range results {
		res := results[i]
		res.Source = ""
		raw, err := json.Marshal(&res)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("variant_id", res.VariantID).Msg("Failed to encode availability result")
			continue
		}
		entries = append(entries,
			cache.Entry{Key: s.keys.VariantKey(res.VariantID), Value: raw, TTL: ttl},
			cache.Entry{Key: s.keys.StaleKey(res.VariantID), Value: raw, TTL: s.staleTTL},
		)
	}

	err := s.store.SetMany(ctx, entries)
	metrics.RecordCacheWrite(mode, len(results), err)
	if err != nil {
		metrics.RecordCacheError("set")
		logging.Ctx(ctx).Warn().Err(err).Str("mode", mode).Int("count", len(results)).Msg("Cache write failed")
	}
}

func decodeResult(ctx context.Context, raw []byte) (models.AvailabilityResult, bool) {
	var res models.AvailabilityResult
	if err := json.Unmarshal(raw, &res); err != nil || res.VariantID == "" {
		logging.Ctx(ctx).Debug().Err(err).Msg("Discarding undecodable cache entry")
		return models.AvailabilityResult{}, false
	}
	return res, true
}
