// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

import (
	"fmt"
	"time"

	"github.com/tomtom215/cardmarket/internal/config"
)

// memorySweepInterval is how often MemoryStore reclaims expired entries.
const memorySweepInterval = time.Minute

// NewStore builds the Store selected by cfg.Backend.
func NewStore(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return NewRedisStore(cfg.Redis), nil
	case config.CacheBackendBadger:
		return OpenBadgerStore(cfg.Badger)
	case config.CacheBackendMemory:
		return NewMemoryStore(memorySweepInterval), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
