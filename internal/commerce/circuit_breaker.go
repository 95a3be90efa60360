// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package commerce

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cardmarket/internal/config"
	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/metrics"
	"github.com/tomtom215/cardmarket/internal/models"
)

// BreakerName labels the upstream circuit breaker in logs and metrics.
const BreakerName = "commerce-api"

// Fetcher is the upstream surface protected by the circuit breaker.
type Fetcher interface {
	FetchOne(ctx context.Context, variantID string) (*models.InventoryRecord, error)
	Ping(ctx context.Context) error
}

// BreakerClient wraps a Fetcher with a circuit breaker.
//
// One BreakerClient is shared by the whole process: its window reflects the
// health of the upstream as seen by every caller, not by a single request.
//
// State machine:
//   - Closed -> Open: within Window, at least MinRequests calls and a failure
//     ratio >= FailureThreshold
//   - Open -> Half-Open: after Cooldown
//   - Half-Open -> Closed: one successful probe
//   - Half-Open -> Open: one failed probe
//
// While open, calls return ErrBreakerOpen without network I/O.
type BreakerClient struct {
	fetcher Fetcher
	cb      *gobreaker.CircuitBreaker[interface{}]
	name    string

	mu      sync.Mutex
	lastErr string
}

// NewBreakerClient creates a circuit breaker around fetcher.
func NewBreakerClient(fetcher Fetcher, cfg config.BreakerConfig) *BreakerClient {
	bc := &BreakerClient{
		fetcher: fetcher,
		name:    BreakerName,
	}

	metrics.CircuitBreakerState.WithLabelValues(bc.name).Set(0) // 0 = closed

	bc.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        bc.name,
		MaxRequests: 1,            // Single probe in half-open state
		Interval:    cfg.Window,   // Reset counts every window while closed
		Timeout:     cfg.Cooldown, // Open -> half-open after cool-down

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			requests := countedRequests(counts)
			if requests == 0 || requests < cfg.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(requests)
			shouldTrip := failureRatio >= cfg.FailureThreshold

			if shouldTrip {
				logging.Warn().
					Uint32("requests", requests).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: isBreakerSuccess,
		IsExcluded:   IsCanceled,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return bc
}

// isBreakerSuccess decides what counts against the failure ratio.
// A 404 says nothing about upstream health; timeouts and every other error
// do. Caller cancellations never reach here, they are excluded from counts.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) && upErr.NotFound() && !upErr.Timeout() {
		return true
	}
	return false
}

// countedRequests is the number of requests that were judged as success or
// failure, leaving out excluded cancellations.
func countedRequests(counts gobreaker.Counts) uint32 {
	if counts.Requests < counts.TotalExclusions {
		return 0
	}
	return counts.Requests - counts.TotalExclusions
}

// execute wraps an upstream call with circuit breaker protection.
// Rejections are returned as ErrBreakerOpen.
func (bc *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := bc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "rejected").Inc()
			logging.Debug().Str("breaker", bc.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, ErrBreakerOpen
		}
		if IsCanceled(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "canceled").Inc()
			return nil, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "failure").Inc()
		bc.setLastError(err)
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// FetchOne retrieves inventory for one variant with circuit breaker protection.
func (bc *BreakerClient) FetchOne(ctx context.Context, variantID string) (*models.InventoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return castResult[models.InventoryRecord](bc.execute(func() (interface{}, error) {
		return bc.fetcher.FetchOne(ctx, variantID)
	}))
}

// Ping probes the upstream with circuit breaker protection.
func (bc *BreakerClient) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.fetcher.Ping(ctx)
	})
	return err
}

// State returns the current breaker state.
func (bc *BreakerClient) State() models.BreakerState {
	return models.BreakerState(stateToString(bc.cb.State()))
}

// Counts returns the counters of the current window.
func (bc *BreakerClient) Counts() gobreaker.Counts {
	return bc.cb.Counts()
}

// LastError returns the most recent upstream failure message, if any.
func (bc *BreakerClient) LastError() string {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.lastErr
}

func (bc *BreakerClient) setLastError(err error) {
	bc.mu.Lock()
	bc.lastErr = err.Error()
	bc.mu.Unlock()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return string(models.BreakerClosed)
	case gobreaker.StateHalfOpen:
		return string(models.BreakerHalfOpen)
	case gobreaker.StateOpen:
		return string(models.BreakerOpen)
	default:
		return string(models.BreakerUnknown)
	}
}
