// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

// Keyspace builds versioned availability keys:
//
//	inventory:{version}:variant:{variantID}  fresh entry
//	inventory:{version}:stale:{variantID}    stale shadow copy for fallback
type Keyspace struct {
	version string
}

// NewKeyspace returns a Keyspace for the given key version (e.g. "v1").
func NewKeyspace(version string) Keyspace {
	if version == "" {
		version = "v1"
	}
	return Keyspace{version: version}
}

// Version returns the key version.
func (k Keyspace) Version() string { return k.version }

// VariantKey is the fresh availability key for variantID.
func (k Keyspace) VariantKey(variantID string) string {
	return "inventory:" + k.version + ":variant:" + variantID
}

// StaleKey is the stale shadow key for variantID.
func (k Keyspace) StaleKey(variantID string) string {
	return "inventory:" + k.version + ":stale:" + variantID
}

// VariantPattern matches every fresh availability key of this version.
func (k Keyspace) VariantPattern() string {
	return "inventory:" + k.version + ":variant:*"
}

// VariantKeys maps ids to fresh keys, preserving order.
func (k Keyspace) VariantKeys(variantIDs []string) []string {
	keys := make([]string, len(variantIDs))
	for i, id := range variantIDs {
		keys[i] = k.VariantKey(id)
	}
	return keys
}
