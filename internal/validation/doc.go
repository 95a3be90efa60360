// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package validation provides request validation using go-playground/validator v10.

Features:
  - Singleton validator instance (thread-safe, caches struct info)
  - Custom variant_id rule: 1-128 characters from [A-Za-z0-9_.:-], so ids are
    safe to embed in cache keys and key patterns
  - Field names reported by their JSON tag
  - Errors convert to the API envelope with code VALIDATION_FAILED and match
    ErrInvalidInput via errors.Is

Request Types:

  - BatchRequest: 1..50 ids, optional use_cache and include_locations
  - InvalidateRequest: 1..100 ids
  - PreWarmRequest: 1..50 ids

Configured limits (batch.max_size, batch.invalidate_max_size) may be lower
than the struct tags; handlers apply them with ValidateIDCount.

Example:

	var req validation.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { ... }
	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, verr)
	    return
	}
*/
package validation
