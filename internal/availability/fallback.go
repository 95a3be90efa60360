// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"context"

	"github.com/tomtom215/cardmarket/internal/metrics"
	"github.com/tomtom215/cardmarket/internal/models"
)

// fallbackMany resolves variants whose upstream fetch failed.
//
// Order per variant: the fresh key (another writer may have filled it, or the
// caller bypassed the cache), then the stale shadow key, then the
// conservative default. One multi-get covers all ids.
func (s *Service) fallbackMany(ctx context.Context, ids []string) map[string]models.AvailabilityResult {
	out := make(map[string]models.AvailabilityResult, len(ids))

	keys := make([]string, 0, 2*len(ids))
	for _, id := range ids {
		keys = append(keys, s.keys.VariantKey(id), s.keys.StaleKey(id))
	}

	values, err := s.store.MultiGet(ctx, keys)
	if err != nil {
		metrics.RecordCacheError("mget")
		values = nil
	}

	for i, id := range ids {
		if res, ok := firstDecodable(ctx, values, 2*i, 2*i+1); ok {
			metrics.RecordFallback(metrics.FallbackStale)
			res.Source = models.SourceStale
			out[id] = res
			continue
		}
		metrics.RecordFallback(metrics.FallbackConservative)
		out[id] = models.ConservativeDefault(id)
	}
	return out
}

func firstDecodable(ctx context.Context, values [][]byte, idx ...int) (models.AvailabilityResult, bool) {
	for _, i := range idx {
		if i >= len(values) || values[i] == nil {
			continue
		}
		if res, ok := decodeResult(ctx, values[i]); ok {
			return res, true
		}
	}
	return models.AvailabilityResult{}, false
}
