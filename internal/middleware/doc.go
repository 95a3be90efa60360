// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

// Package middleware provides HTTP middleware shared by the API router.
//
//   - RequestID: propagates X-Request-ID into the logging context
//   - AccessLog: request-scoped debug log line, warn for slow requests
//   - PrometheusMetrics: per-route request counters, latency histogram and
//     in-flight gauge
//
// All are standard func(http.Handler) http.Handler middleware and are
// mounted with chi's r.Use.
package middleware
