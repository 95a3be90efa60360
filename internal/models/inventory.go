// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package models

import (
	"time"
)

// LocationLevel is the stock position of one variant at one stock location.
type LocationLevel struct {
	LocationID string `json:"locationId"`
	Stocked    int    `json:"stocked"`
	Reserved   int    `json:"reserved"`
	Incoming   int    `json:"incoming"`
}

// InventoryRecord is the canonical upstream inventory shape for a variant.
// It is produced by normalizing either commerce endpoint payload and is never
// persisted; only the AvailabilityResult derived from it is cached.
//
// ReservedQuantity may exceed TotalQuantity when the upstream is inconsistent.
type InventoryRecord struct {
	VariantID         string          `json:"variantId"`
	SKU               string          `json:"sku,omitempty"`
	TotalQuantity     int             `json:"totalQuantity"`
	ReservedQuantity  int             `json:"reservedQuantity"`
	IsManaged         bool            `json:"isManaged"`
	AllowsBackorder   bool            `json:"allowsBackorder"`
	LocationBreakdown []LocationLevel `json:"locationBreakdown,omitempty"`
	FetchedAt         time.Time       `json:"fetchedAt"`
}

// ResultSource describes how an AvailabilityResult was produced.
type ResultSource string

const (
	SourceCache    ResultSource = "cache"
	SourceUpstream ResultSource = "upstream"
	SourceStale    ResultSource = "stale"
	SourceFallback ResultSource = "fallback"
)

// AvailabilityResult is the derived availability answer for a variant.
// It is cached verbatim as JSON.
type AvailabilityResult struct {
	VariantID         string          `json:"variantId"`
	Available         bool            `json:"available"`
	AvailableQuantity int             `json:"availableQuantity"`
	ReservedQuantity  int             `json:"reservedQuantity"`
	CanBackorder      bool            `json:"canBackorder"`
	IsManaged         bool            `json:"isManaged"`
	LastChecked       time.Time       `json:"lastChecked"`
	LocationBreakdown []LocationLevel `json:"locationBreakdown,omitempty"`
	Source            ResultSource    `json:"source,omitempty"`
}

// ConservativeDefault returns the result served when neither live nor stale
// data is obtainable.
func ConservativeDefault(variantID string) AvailabilityResult {
	return AvailabilityResult{
		VariantID:         variantID,
		Available:         false,
		AvailableQuantity: 0,
		ReservedQuantity:  0,
		CanBackorder:      false,
		IsManaged:         true,
		LastChecked:       time.Now().UTC(),
		Source:            SourceFallback,
	}
}

// BreakerState is the externally visible state of the upstream circuit breaker.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerHalfOpen BreakerState = "half-open"
	BreakerOpen     BreakerState = "open"
	BreakerUnknown  BreakerState = "unknown"
)

// InventoryHealth is the result of an inventory subsystem health check.
type InventoryHealth struct {
	Healthy            bool         `json:"healthy"`
	CacheConnected     bool         `json:"cacheConnected"`
	UpstreamAccessible bool         `json:"upstreamAccessible"`
	BreakerState       BreakerState `json:"breakerState"`
	LastError          string       `json:"lastError,omitempty"`
	CheckedAt          time.Time    `json:"checkedAt"`
}

// InventoryStats are running counters since process start, plus a live count
// of cached availability keys.
type InventoryStats struct {
	TotalCachedKeys     int64      `json:"totalCachedKeys"`
	CacheHitRate        float64    `json:"cacheHitRate"`
	CacheMissRate       float64    `json:"cacheMissRate"`
	UpstreamSuccessRate float64    `json:"upstreamSuccessRate"`
	AvgResponseTimeMs   float64    `json:"avgResponseTimeMs"`
	UpstreamRequests    int64      `json:"upstreamRequests"`
	LastSyncAt          *time.Time `json:"lastSyncAt,omitempty"`
}
