// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package metrics provides Prometheus instrumentation for the inventory
availability service.

All collectors are registered with the default registry through promauto and
exposed at GET /metrics by the API router.

# Metric Families

Cache:
  - inventory_cache_requests_total{result}: hit, miss, error
  - inventory_cache_writes_total{mode,status}
  - inventory_cache_errors_total{op}
  - inventory_cache_invalidations_total
  - inventory_cache_keys

Upstream:
  - inventory_upstream_requests_total{endpoint,outcome}
  - inventory_upstream_request_duration_seconds{endpoint,outcome}
  - inventory_upstream_retries_total{endpoint}

Resilience:
  - inventory_fallback_total{kind}: stale, conservative
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Batch and scheduling:
  - inventory_batch_size
  - inventory_prewarm_runs_total{status}

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

# Example Queries

	# Cache hit ratio over 5 minutes
	sum(rate(inventory_cache_requests_total{result="hit"}[5m]))
	  / sum(rate(inventory_cache_requests_total[5m]))

	# Share of answers that were conservative defaults
	rate(inventory_fallback_total{kind="conservative"}[5m])
*/
package metrics
