// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package services adapts application components to suture.Service.

HTTPServerService runs an *http.Server: ListenAndServe in a goroutine, graceful
Shutdown with a bounded timeout when the supervisor cancels the context. A
listen failure is returned so suture restarts the service with backoff.

PreWarmService refreshes a configured list of hot variants through
availability.Service.PreWarm, once at start and then on a ticker. Each run is
recorded in inventory_prewarm_runs_total, with status "error" when fewer
variants were warmed than requested. With nothing to warm it returns
suture.ErrDoNotRestart.
*/
package services
