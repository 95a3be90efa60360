// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"github.com/tomtom215/cardmarket/internal/models"
)

// ToAvailabilityResult derives the availability answer from an upstream record.
//
//	availableQuantity = max(0, total - reserved)
//	available         = availableQuantity > 0 || allowsBackorder
//
// LastChecked is taken from the record's fetch time; the service restamps it
// when the result is written to the cache.
func ToAvailabilityResult(rec *models.InventoryRecord, includeLocations bool) models.AvailabilityResult {
	availableQty := rec.TotalQuantity - rec.ReservedQuantity
	if availableQty < 0 {
		availableQty = 0
	}

	res := models.AvailabilityResult{
		VariantID:         rec.VariantID,
		Available:         availableQty > 0 || rec.AllowsBackorder,
		AvailableQuantity: availableQty,
		ReservedQuantity:  rec.ReservedQuantity,
		CanBackorder:      rec.AllowsBackorder,
		IsManaged:         rec.IsManaged,
		LastChecked:       rec.FetchedAt,
	}
	if includeLocations && len(rec.LocationBreakdown) > 0 {
		res.LocationBreakdown = append([]models.LocationLevel(nil), rec.LocationBreakdown...)
	}
	return res
}

// view shapes a stored result for a caller. Cached values always carry the
// location breakdown; it is dropped unless requested.
func view(res models.AvailabilityResult, source models.ResultSource, includeLocations bool) models.AvailabilityResult {
	res.Source = source
	if !includeLocations {
		res.LocationBreakdown = nil
	}
	return res
}
