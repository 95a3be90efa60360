// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package commerce

import (
	"testing"
	"time"

	wire "github.com/tomtom215/cardmarket/internal/models/commerce"
)

func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func twoLocations() []wire.InventoryItem {
	return []wire.InventoryItem{{
		LocationLevels: []wire.LocationLevel{
			{LocationID: "loc_a", StockedQuantity: 5, ReservedQuantity: 1},
			{LocationID: "loc_b", StockedQuantity: 3, ReservedQuantity: 2, IncomingQuantity: 4},
		},
	}}
}

func TestNormalizeAdmin(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		variant      wire.AdminVariant
		wantTotal    int
		wantReserved int
		wantManaged  bool
		wantLocs     int
	}{
		{
			name:         "explicit reserved quantity wins",
			variant:      wire.AdminVariant{ID: "v", InventoryQuantity: 8, ReservedQuantity: intPtr(1), InventoryItems: twoLocations()},
			wantTotal:    8,
			wantReserved: 1,
			wantManaged:  true,
			wantLocs:     2,
		},
		{
			name:         "reserved summed from locations when absent",
			variant:      wire.AdminVariant{ID: "v", InventoryQuantity: 8, InventoryItems: twoLocations()},
			wantTotal:    8,
			wantReserved: 3,
			wantManaged:  true,
			wantLocs:     2,
		},
		{
			name:         "no locations and no reserved",
			variant:      wire.AdminVariant{ID: "v", InventoryQuantity: 2, ManageInventory: boolPtr(false)},
			wantTotal:    2,
			wantReserved: 0,
			wantManaged:  false,
		},
		{
			name:         "negative counters clamped",
			variant:      wire.AdminVariant{ID: "v", InventoryQuantity: -4, ReservedQuantity: intPtr(-1)},
			wantTotal:    0,
			wantReserved: 0,
			wantManaged:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := normalizeAdmin(&tt.variant, fetched)
			if rec.TotalQuantity != tt.wantTotal {
				t.Errorf("TotalQuantity = %d, want %d", rec.TotalQuantity, tt.wantTotal)
			}
			if rec.ReservedQuantity != tt.wantReserved {
				t.Errorf("ReservedQuantity = %d, want %d", rec.ReservedQuantity, tt.wantReserved)
			}
			if rec.IsManaged != tt.wantManaged {
				t.Errorf("IsManaged = %v, want %v", rec.IsManaged, tt.wantManaged)
			}
			if len(rec.LocationBreakdown) != tt.wantLocs {
				t.Errorf("locations = %d, want %d", len(rec.LocationBreakdown), tt.wantLocs)
			}
			if !rec.FetchedAt.Equal(fetched) {
				t.Errorf("FetchedAt = %v", rec.FetchedAt)
			}
		})
	}
}

func TestNormalizeStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		variant      wire.StoreVariant
		wantTotal    int
		wantReserved int
	}{
		{
			name:         "net quantity without reserved",
			variant:      wire.StoreVariant{ID: "v", InventoryQuantity: intPtr(6)},
			wantTotal:    6,
			wantReserved: 0,
		},
		{
			name:         "quantity with explicit reserved",
			variant:      wire.StoreVariant{ID: "v", InventoryQuantity: intPtr(6), ReservedQuantity: intPtr(2)},
			wantTotal:    6,
			wantReserved: 2,
		},
		{
			name:         "no quantity falls back to locations",
			variant:      wire.StoreVariant{ID: "v", InventoryItems: twoLocations()},
			wantTotal:    8,
			wantReserved: 3,
		},
		{
			name:         "nothing reported",
			variant:      wire.StoreVariant{ID: "v"},
			wantTotal:    0,
			wantReserved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := normalizeStore(&tt.variant, time.Now())
			if rec.TotalQuantity != tt.wantTotal {
				t.Errorf("TotalQuantity = %d, want %d", rec.TotalQuantity, tt.wantTotal)
			}
			if rec.ReservedQuantity != tt.wantReserved {
				t.Errorf("ReservedQuantity = %d, want %d", rec.ReservedQuantity, tt.wantReserved)
			}
			if !rec.IsManaged {
				t.Error("absent manage_inventory should default to managed")
			}
		})
	}
}

func TestNormalizeCopiesSKU(t *testing.T) {
	t.Parallel()

	rec := normalizeStore(&wire.StoreVariant{ID: "v", SKU: strPtr("PKM-BS-004")}, time.Now())
	if rec.SKU != "PKM-BS-004" {
		t.Errorf("SKU = %q", rec.SKU)
	}
	rec = normalizeAdmin(&wire.AdminVariant{ID: "v"}, time.Now())
	if rec.SKU != "" {
		t.Errorf("nil SKU = %q, want empty", rec.SKU)
	}
}

func TestFlattenLocationsPreservesOrder(t *testing.T) {
	t.Parallel()

	items := append(twoLocations(), wire.InventoryItem{
		LocationLevels: []wire.LocationLevel{{LocationID: "loc_c", StockedQuantity: -1}},
	})
	levels := flattenLocations(items)

	want := []string{"loc_a", "loc_b", "loc_c"}
	if len(levels) != len(want) {
		t.Fatalf("len = %d, want %d", len(levels), len(want))
	}
	for i, id := range want {
		if levels[i].LocationID != id {
			t.Errorf("levels[%d] = %q, want %q", i, levels[i].LocationID, id)
		}
	}
	if levels[2].Stocked != 0 {
		t.Errorf("negative stocked not clamped: %d", levels[2].Stocked)
	}
}
