// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package models defines data structures for the inventory availability service.

Key Components:

  - InventoryRecord: canonical upstream inventory for a variant, normalized from
    either commerce endpoint shape (see models/commerce)
  - AvailabilityResult: the derived availability answer, cached verbatim as JSON
  - InventoryHealth: health check result (cache, upstream, breaker state)
  - InventoryStats: running counters and live cached-key count

Model Categories:

1. Domain Models:
  - InventoryRecord, LocationLevel
  - AvailabilityResult, ResultSource

2. Operational Models:
  - InventoryHealth, BreakerState
  - InventoryStats

3. Commerce Wire Models (subpackage commerce):
  - AdminVariantResponse: privileged admin endpoint payload
  - StoreVariantResponse: public storefront endpoint payload

Thread Safety:

All models are plain value types. They are safe to copy and share once
constructed; none carry internal synchronization.
*/
package models
