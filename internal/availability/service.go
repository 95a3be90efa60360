// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/cardmarket/internal/cache"
	"github.com/tomtom215/cardmarket/internal/commerce"
	"github.com/tomtom215/cardmarket/internal/config"
	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/metrics"
	"github.com/tomtom215/cardmarket/internal/models"
)

// Upstream is the breaker-protected inventory source. *commerce.BreakerClient
// satisfies it.
type Upstream interface {
	FetchOne(ctx context.Context, variantID string) (*models.InventoryRecord, error)
	Ping(ctx context.Context) error
	State() models.BreakerState
	LastError() string
}

// Options controls a single lookup.
type Options struct {
	// UseCache reads the cache before going upstream. Results are written
	// through either way.
	UseCache bool

	// IncludeLocations returns the per-location breakdown.
	IncludeLocations bool
}

// DefaultOptions reads through the cache without location detail.
func DefaultOptions() Options {
	return Options{UseCache: true}
}

// Service answers availability questions for product variants.
//
// Lookups never fail for upstream reasons: on error they degrade to a stale
// cached answer and then to models.ConservativeDefault. Cache failures are
// treated as misses.
type Service struct {
	store       cache.Store
	keys        cache.Keyspace
	upstream    Upstream
	ttl         time.Duration
	batchTTL    time.Duration
	staleTTL    time.Duration
	concurrency int

	stats  *Stats
	flight singleflight.Group
	now    func() time.Time
}

// NewService wires the availability service. store and upstream are shared
// process-wide.
func NewService(store cache.Store, upstream Upstream, cacheCfg config.CacheConfig, batchCfg config.BatchConfig) *Service {
	concurrency := batchCfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		store:       store,
		keys:        cache.NewKeyspace(cacheCfg.KeyVersion),
		upstream:    upstream,
		ttl:         cacheCfg.TTL,
		batchTTL:    cacheCfg.BatchTTL,
		staleTTL:    cacheCfg.StaleTTL,
		concurrency: concurrency,
		stats:       &Stats{},
		now:         time.Now,
	}
}

// CheckOne returns availability for one variant. An empty id resolves to the
// conservative default without any cache or upstream access.
//
// Concurrent misses for the same variant share one upstream call. The shared
// call does not inherit any caller's cancellation and is bounded by the
// upstream client's own timeout; a caller whose context ends first gets its
// own fallback while the others still receive the live answer.
func (s *Service) CheckOne(ctx context.Context, variantID string, opts Options) models.AvailabilityResult {
	if variantID == "" {
		return models.ConservativeDefault(variantID)
	}
	if opts.UseCache {
		if res, ok := s.lookup(ctx, variantID); ok {
			return view(res, models.SourceCache, opts.IncludeLocations)
		}
	}
	if ctx.Err() != nil {
		return s.fallbackOne(ctx, variantID, opts)
	}

	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(variantID, func() (interface{}, error) {
		return s.resolveOne(shared, variantID), nil
	})

	select {
	case r := <-ch:
		res, ok := r.Val.(models.AvailabilityResult)
		if !ok {
			return models.ConservativeDefault(variantID)
		}
		return view(res, res.Source, opts.IncludeLocations)
	case <-ctx.Done():
		logging.Ctx(ctx).Debug().Str("variant_id", variantID).Msg("Caller left before shared lookup finished")
		return s.fallbackOne(ctx, variantID, opts)
	}
}

func (s *Service) fallbackOne(ctx context.Context, variantID string, opts Options) models.AvailabilityResult {
	res := s.fallbackMany(ctx, []string{variantID})[variantID]
	return view(res, res.Source, opts.IncludeLocations)
}

func (s *Service) resolveOne(ctx context.Context, variantID string) models.AvailabilityResult {
	res, err := s.fetch(ctx, variantID)
	if err != nil {
		return s.fallbackMany(ctx, []string{variantID})[variantID]
	}
	s.write(ctx, writeModeSingle, s.ttl, res)
	return res
}

// fetch performs one breaker-protected upstream call and transforms the result.
func (s *Service) fetch(ctx context.Context, variantID string) (models.AvailabilityResult, error) {
	start := s.now()
	rec, err := s.upstream.FetchOne(ctx, variantID)
	elapsed := s.now().Sub(start)

	if !errors.Is(err, commerce.ErrBreakerOpen) {
		s.stats.recordUpstream(elapsed, err == nil)
	}
	if err != nil {
		logFetchFailure(ctx, variantID, err)
		return models.AvailabilityResult{}, err
	}

	now := s.now().UTC()
	s.stats.markSync(now)

	res := ToAvailabilityResult(rec, true)
	res.VariantID = variantID
	res.LastChecked = now
	res.Source = models.SourceUpstream
	return res, nil
}

func logFetchFailure(ctx context.Context, variantID string, err error) {
	logger := logging.Ctx(ctx)
	switch {
	case errors.Is(err, commerce.ErrBreakerOpen):
		logger.Debug().Str("variant_id", variantID).Msg("Circuit open, serving fallback")
	case commerce.IsCanceled(err):
		logger.Debug().Str("variant_id", variantID).Msg("Lookup canceled by caller")
	default:
		logger.Warn().Err(err).Str("variant_id", variantID).Msg("Upstream inventory fetch failed, serving fallback")
	}
}

// CheckMany returns availability for every requested variant. The result
// always has exactly one entry per distinct input id.
func (s *Service) CheckMany(ctx context.Context, variantIDs []string, opts Options) map[string]models.AvailabilityResult {
	return s.fetchMany(ctx, variantIDs, opts)
}

// Invalidate deletes the fresh and stale entries of the given variants so the
// next read goes upstream. It returns the number of distinct non-empty ids
// invalidated, which is 0 on error.
func (s *Service) Invalidate(ctx context.Context, variantIDs []string) (int, error) {
	ids := dedupe(variantIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, 2*len(ids))
	for _, id := range ids {
		keys = append(keys, s.keys.VariantKey(id), s.keys.StaleKey(id))
	}

	if err := s.store.DeleteMany(ctx, keys); err != nil {
		metrics.RecordCacheError("del")
		return 0, fmt.Errorf("invalidate %d variants: %w", len(ids), err)
	}

	metrics.CacheInvalidations.Add(float64(len(ids)))
	logging.Ctx(ctx).Debug().Int("count", len(ids)).Msg("Invalidated availability cache entries")
	return len(ids), nil
}

// PreWarm fetches variants from upstream, bypassing cache reads, to populate
// the cache. It returns how many variants were refreshed from upstream.
func (s *Service) PreWarm(ctx context.Context, variantIDs []string) int {
	results := s.fetchMany(ctx, variantIDs, Options{UseCache: false, IncludeLocations: true})

	warmed := 0
	for _, res := range results {
		if res.Source == models.SourceUpstream {
			warmed++
		}
	}

	logging.Ctx(ctx).Info().
		Int("requested", len(results)).
		Int("warmed", warmed).
		Msg("Pre-warmed availability cache")
	return warmed
}

// HealthCheck pings the cache and probes the upstream once through the
// circuit breaker.
func (s *Service) HealthCheck(ctx context.Context) models.InventoryHealth {
	var cacheErr, upstreamErr error

	var g errgroup.Group
	g.Go(func() error {
		cacheErr = s.store.Ping(ctx)
		return nil
	})
	g.Go(func() error {
		upstreamErr = s.upstream.Ping(ctx)
		return nil
	})
	_ = g.Wait()

	health := models.InventoryHealth{
		CacheConnected:     cacheErr == nil,
		UpstreamAccessible: upstreamErr == nil,
		BreakerState:       s.upstream.State(),
		CheckedAt:          s.now().UTC(),
	}
	health.Healthy = health.CacheConnected && health.UpstreamAccessible

	switch {
	case upstreamErr != nil:
		health.LastError = upstreamErr.Error()
	case cacheErr != nil:
		health.LastError = cacheErr.Error()
	default:
		health.LastError = s.upstream.LastError()
	}

	if !health.Healthy {
		logging.Ctx(ctx).Warn().
			Bool("cache_connected", health.CacheConnected).
			Bool("upstream_accessible", health.UpstreamAccessible).
			Str("breaker_state", string(health.BreakerState)).
			Str("last_error", health.LastError).
			Msg("Inventory health check failed")
	}
	return health
}

// GetStats returns running counters plus a live count of cached availability keys.
// When the cache cannot be counted TotalCachedKeys is -1.
func (s *Service) GetStats(ctx context.Context) models.InventoryStats {
	total, err := s.store.CountKeys(ctx, s.keys.VariantPattern())
	if err != nil {
		metrics.RecordCacheError("count")
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count cached keys")
		total = -1
	} else {
		metrics.CacheKeys.Set(float64(total))
	}
	return s.stats.Snapshot(total)
}
