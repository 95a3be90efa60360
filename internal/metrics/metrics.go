// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultError = "error"
)

// Upstream call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeRateLimited = "rate_limited"
	OutcomeTimeout     = "timeout"
	OutcomeError       = "error"
)

// Fallback kinds.
const (
	FallbackStale        = "stale"
	FallbackConservative = "conservative"
)

var (
	// Availability Cache Metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_cache_requests_total",
			Help: "Total number of availability cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_cache_writes_total",
			Help: "Total number of availability cache writes",
		},
		[]string{"mode", "status"}, // mode: single, batch; status: ok, error
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_cache_errors_total",
			Help: "Total number of availability cache backend errors by operation",
		},
		[]string{"op"}, // get, mget, set, del, count, ping
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_cache_invalidations_total",
			Help: "Total number of variant ids invalidated",
		},
	)

	CacheKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_cache_keys",
			Help: "Number of availability keys observed at the last stats request",
		},
	)

	// Upstream Commerce Backend Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_upstream_request_duration_seconds",
			Help:    "Duration of commerce backend variant requests",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint", "outcome"}, // endpoint: admin, store, health
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_upstream_requests_total",
			Help: "Total number of commerce backend requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_upstream_retries_total",
			Help: "Total number of retries after HTTP 429 from the commerce backend",
		},
		[]string{"endpoint"},
	)

	// Fallback Metrics
	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_fallback_total",
			Help: "Total number of availability answers served from a fallback",
		},
		[]string{"kind"}, // stale, conservative
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_batch_size",
			Help:    "Number of unique variant ids per batch lookup",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 50},
		},
	)

	PreWarmRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_prewarm_runs_total",
			Help: "Total number of scheduled pre-warm runs",
		},
		[]string{"status"}, // success, error
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, canceled, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(result string) {
	CacheRequests.WithLabelValues(result).Inc()
}

// RecordCacheError counts a cache backend failure for op.
func RecordCacheError(op string) {
	CacheErrors.WithLabelValues(op).Inc()
}

// RecordCacheWrite counts one cache write of n entries.
func RecordCacheWrite(mode string, n int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CacheWrites.WithLabelValues(mode, status).Add(float64(n))
}

// RecordUpstreamRequest records a single commerce backend call.
func RecordUpstreamRequest(endpoint, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint, outcome).Observe(duration.Seconds())
}

// RecordUpstreamRetry counts a retry after HTTP 429.
func RecordUpstreamRetry(endpoint string) {
	UpstreamRetries.WithLabelValues(endpoint).Inc()
}

// RecordFallback counts an answer served from stale data or the conservative default.
func RecordFallback(kind string) {
	Fallbacks.WithLabelValues(kind).Inc()
}

// RecordPreWarmRun counts a scheduled pre-warm run.
func RecordPreWarmRun(err error) {
	if err != nil {
		PreWarmRuns.WithLabelValues("error").Inc()
		return
	}
	PreWarmRuns.WithLabelValues("success").Inc()
}

// RecordAPIRequest records API request metrics
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
