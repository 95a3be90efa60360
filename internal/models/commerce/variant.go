// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

// Package commerce contains the wire shapes returned by the commerce backend's
// product variant endpoints.
package commerce

// AdminVariantResponse is the payload of GET /admin/products/variants/{id}.
type AdminVariantResponse struct {
	Variant AdminVariant `json:"variant"`
}

// AdminVariant is the privileged variant representation. Quantities are
// authoritative and location levels are included when the backend tracks them.
type AdminVariant struct {
	ID                string          `json:"id"`
	SKU               *string         `json:"sku"`
	ManageInventory   *bool           `json:"manage_inventory"`
	AllowBackorder    bool            `json:"allow_backorder"`
	InventoryQuantity int             `json:"inventory_quantity"`
	ReservedQuantity  *int            `json:"reserved_quantity,omitempty"`
	InventoryItems    []InventoryItem `json:"inventory_items,omitempty"`
}

// InventoryItem links a variant to its per-location stock levels.
type InventoryItem struct {
	InventoryItemID string          `json:"inventory_item_id,omitempty"`
	LocationLevels  []LocationLevel `json:"location_levels"`
}

// LocationLevel is one stock location's counters as reported upstream.
type LocationLevel struct {
	LocationID       string `json:"location_id"`
	StockedQuantity  int    `json:"stocked_quantity"`
	ReservedQuantity int    `json:"reserved_quantity"`
	IncomingQuantity int    `json:"incoming_quantity"`
}

// StoreVariantResponse is the payload of GET /store/products/variants/{id}.
type StoreVariantResponse struct {
	Variant StoreVariant `json:"variant"`
}

// StoreVariant is the public storefront variant representation. The storefront
// may omit inventory items and may report inventory_quantity already net of
// reservations, in which case reserved_quantity is absent.
type StoreVariant struct {
	ID                string          `json:"id"`
	SKU               *string         `json:"sku"`
	ManageInventory   *bool           `json:"manage_inventory"`
	AllowBackorder    bool            `json:"allow_backorder"`
	InventoryQuantity *int            `json:"inventory_quantity"`
	ReservedQuantity  *int            `json:"reserved_quantity,omitempty"`
	InventoryItems    []InventoryItem `json:"inventory_items,omitempty"`
}
