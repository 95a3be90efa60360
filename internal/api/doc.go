// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package api exposes the inventory availability facade over HTTP using the
Chi router.

Endpoints:

	GET  /api/v1/inventory/variants/{variantID}?use_cache=&include_locations=
	POST /api/v1/inventory/variants/batch   {"variant_ids": [...], "use_cache": true, "include_locations": false}
	POST /api/v1/inventory/invalidate       {"variant_ids": [...]}
	POST /api/v1/inventory/prewarm          {"variant_ids": [...]}
	GET  /api/v1/inventory/health           (503 when unhealthy)
	GET  /api/v1/inventory/stats
	GET  /api/v1/health/live
	GET  /metrics

Response Format:

Every JSON endpoint answers with the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "VALIDATION_FAILED", "message": "...", "details": {...}},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Availability lookups never fail at the HTTP layer once input is valid: the
facade always returns a result, falling back to stale or conservative data.
Invalid input is rejected with 400 VALIDATION_FAILED.

Middleware:

Global: request id, real IP, access log, panic recovery, CORS (go-chi/cors).
Inventory routes add per-IP rate limiting (go-chi/httprate) and Prometheus
request metrics.
*/
package api
