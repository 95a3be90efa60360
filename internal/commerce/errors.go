// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package commerce

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrBreakerOpen is returned without any network I/O while the upstream
// circuit breaker is open or its half-open probe slot is taken.
var ErrBreakerOpen = errors.New("upstream circuit breaker open")

// UpstreamError describes a failed call to one commerce backend endpoint.
// Status is 0 when no HTTP response was received.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s endpoint: HTTP %d: %s: %v", e.Endpoint, e.Status, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s endpoint: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s endpoint: %s: %v", e.Endpoint, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s endpoint: %s", e.Endpoint, e.Message)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Timeout reports whether the call failed because a deadline passed.
func (e *UpstreamError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// NotFound reports whether the backend answered 404.
func (e *UpstreamError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// RateLimited reports whether the backend answered 429 after all retries.
func (e *UpstreamError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// IsCanceled reports whether err stems from the caller abandoning the request.
// Such failures say nothing about upstream health.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
