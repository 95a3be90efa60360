// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package validation

// Hard ceilings on id lists. Configured limits may only be lower.
const (
	MaxBatchIDs      = 50
	MaxInvalidateIDs = 100
)

// BatchRequest is the body of POST /api/v1/inventory/variants/batch.
// UseCache defaults to true when omitted.
type BatchRequest struct {
	VariantIDs       []string `json:"variant_ids" validate:"required,min=1,max=50,dive,variant_id"`
	UseCache         *bool    `json:"use_cache,omitempty"`
	IncludeLocations bool     `json:"include_locations,omitempty"`
}

// InvalidateRequest is the body of POST /api/v1/inventory/invalidate.
type InvalidateRequest struct {
	VariantIDs []string `json:"variant_ids" validate:"required,min=1,max=100,dive,variant_id"`
}

// PreWarmRequest is the body of POST /api/v1/inventory/prewarm.
type PreWarmRequest struct {
	VariantIDs []string `json:"variant_ids" validate:"required,min=1,max=50,dive,variant_id"`
}
