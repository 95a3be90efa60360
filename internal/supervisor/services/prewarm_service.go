// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/metrics"
)

// Warmer refreshes cache entries from upstream. *availability.Service satisfies it.
type Warmer interface {
	PreWarm(ctx context.Context, variantIDs []string) int
}

// PreWarmService periodically pre-warms a fixed set of hot variants.
//
// One run happens immediately on start, then one per interval. Each run is
// bounded by the interval so a slow upstream cannot stack runs.
type PreWarmService struct {
	warmer     Warmer
	variantIDs []string
	interval   time.Duration
}

// NewPreWarmService creates the scheduler. Duplicate and empty ids are dropped.
func NewPreWarmService(warmer Warmer, variantIDs []string, interval time.Duration) *PreWarmService {
	seen := make(map[string]struct{}, len(variantIDs))
	ids := make([]string, 0, len(variantIDs))
	for _, id := range variantIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return &PreWarmService{
		warmer:     warmer,
		variantIDs: ids,
		interval:   interval,
	}
}

// Serve implements suture.Service. With nothing to warm it tells the
// supervisor not to restart it.
func (p *PreWarmService) Serve(ctx context.Context) error {
	if len(p.variantIDs) == 0 || p.interval <= 0 {
		logging.Warn().Msg("Pre-warm scheduler has no variants or interval, not running")
		return suture.ErrDoNotRestart
	}

	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *PreWarmService) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	start := time.Now()
	warmed := p.warmer.PreWarm(runCtx, p.variantIDs)

	var err error
	if warmed < len(p.variantIDs) {
		err = fmt.Errorf("pre-warmed %d of %d variants", warmed, len(p.variantIDs))
	}
	metrics.RecordPreWarmRun(err)

	event := logging.Debug()
	if err != nil {
		event = logging.Warn().Err(err)
	}
	event.
		Int("requested", len(p.variantIDs)).
		Int("warmed", warmed).
		Dur("duration", time.Since(start)).
		Msg("Pre-warm run finished")
}

// String identifies the service in supervisor logs.
func (p *PreWarmService) String() string {
	return "prewarm-scheduler"
}
