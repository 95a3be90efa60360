// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/metrics"
	"github.com/tomtom215/cardmarket/internal/models"
)

// fetchMany resolves a batch of variants.
//
//  1. One multi-get partitions ids into hits and misses (when caching).
//  2. Misses are fetched in fixed groups of s.concurrency; a group starts only
//     after the previous one has fully resolved.
//  3. Each group's successes are written with one batched cache write.
//  4. Each group's failures resolve through fallbackMany.
//
// Individual failures never abort the batch. An empty id gets the
// conservative default and is never looked up.
func (s *Service) fetchMany(ctx context.Context, variantIDs []string, opts Options) map[string]models.AvailabilityResult {
	ids := dedupe(variantIDs)
	out := make(map[string]models.AvailabilityResult, len(ids)+1)
	if slices.Contains(variantIDs, "") {
		out[""] = models.ConservativeDefault("")
	}
	if len(ids) == 0 {
		return out
	}
	metrics.BatchSize.Observe(float64(len(ids)))

	misses := ids
	if opts.UseCache {
		var hits map[string]models.AvailabilityResult
		hits, misses = s.lookupMany(ctx, ids)
		for id, res := range hits {
			out[id] = view(res, models.SourceCache, opts.IncludeLocations)
		}
	}

	for start := 0; start < len(misses); start += s.concurrency {
		end := start + s.concurrency
		if end > len(misses) {
			end = len(misses)
		}
		for id, res := range s.fetchGroup(ctx, misses[start:end]) {
			out[id] = view(res, res.Source, opts.IncludeLocations)
		}
	}

	logging.Ctx(ctx).Debug().
		Int("requested", len(ids)).
		Int("misses", len(misses)).
		Msg("Batch availability lookup complete")
	return out
}

// fetchGroup fetches one group concurrently and waits for every member.
func (s *Service) fetchGroup(ctx context.Context, group []string) map[string]models.AvailabilityResult {
	results := make([]models.AvailabilityResult, len(group))
	errs := make([]error, len(group))

	// Plain Group, not WithContext: one failure must not cancel its siblings.
	var g errgroup.Group
	for i, id := range group {
		g.Go(func() error {
			results[i], errs[i] = s.fetch(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]models.AvailabilityResult, len(group))
	fresh := make([]models.AvailabilityResult, 0, len(group))
	var failed []string
	for i, id := range group {
		if errs[i] != nil {
			failed = append(failed, id)
			continue
		}
		fresh = append(fresh, results[i])
		out[id] = results[i]
	}

	s.write(ctx, writeModeBatch, s.batchTTL, fresh...)

	if len(failed) > 0 {
		for id, res := range s.fallbackMany(ctx, failed) {
			out[id] = res
		}
	}
	return out
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
