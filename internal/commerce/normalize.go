// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package commerce

import (
	"time"

	"github.com/tomtom215/cardmarket/internal/models"
	wire "github.com/tomtom215/cardmarket/internal/models/commerce"
)

// normalizeAdmin maps the admin endpoint payload to an InventoryRecord.
//
// inventory_quantity is the on-hand count. Reservations come from
// reserved_quantity when present, otherwise from the sum of per-location
// reservations.
func normalizeAdmin(v *wire.AdminVariant, fetchedAt time.Time) models.InventoryRecord {
	locations := flattenLocations(v.InventoryItems)

	reserved := sumReserved(locations)
	if v.ReservedQuantity != nil {
		reserved = *v.ReservedQuantity
	}

	return models.InventoryRecord{
		VariantID:         v.ID,
		SKU:               deref(v.SKU),
		TotalQuantity:     nonNegative(v.InventoryQuantity),
		ReservedQuantity:  nonNegative(reserved),
		IsManaged:         managed(v.ManageInventory),
		AllowsBackorder:   v.AllowBackorder,
		LocationBreakdown: locations,
		FetchedAt:         fetchedAt,
	}
}

// normalizeStore maps the storefront payload to an InventoryRecord.
//
// The storefront may report inventory_quantity already net of reservations
// and omit reserved_quantity; in that case reserved is 0 so the quantity is
// not subtracted twice. With no inventory_quantity at all, stocked counts
// from location levels are used.
func normalizeStore(v *wire.StoreVariant, fetchedAt time.Time) models.InventoryRecord {
	locations := flattenLocations(v.InventoryItems)

	total := 0
	switch {
	case v.InventoryQuantity != nil:
		total = *v.InventoryQuantity
	case len(locations) > 0:
		total = sumStocked(locations)
	}

	reserved := 0
	if v.ReservedQuantity != nil {
		reserved = *v.ReservedQuantity
	} else if v.InventoryQuantity == nil {
		reserved = sumReserved(locations)
	}

	return models.InventoryRecord{
		VariantID:         v.ID,
		SKU:               deref(v.SKU),
		TotalQuantity:     nonNegative(total),
		ReservedQuantity:  nonNegative(reserved),
		IsManaged:         managed(v.ManageInventory),
		AllowsBackorder:   v.AllowBackorder,
		LocationBreakdown: locations,
		FetchedAt:         fetchedAt,
	}
}

// flattenLocations preserves upstream order across inventory items.
func flattenLocations(items []wire.InventoryItem) []models.LocationLevel {
	var out []models.LocationLevel
	for _, item := range items {
		for _, l := range item.LocationLevels {
			out = append(out, models.LocationLevel{
				LocationID: l.LocationID,
				Stocked:    nonNegative(l.StockedQuantity),
				Reserved:   nonNegative(l.ReservedQuantity),
				Incoming:   nonNegative(l.IncomingQuantity),
			})
		}
	}
	return out
}

func sumStocked(levels []models.LocationLevel) int {
	n := 0
	for _, l := range levels {
		n += l.Stocked
	}
	return n
}

func sumReserved(levels []models.LocationLevel) int {
	n := 0
	for _, l := range levels {
		n += l.Reserved
	}
	return n
}

// managed defaults to true: an absent flag must not be read as unlimited stock.
func managed(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
