// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package commerce

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// maxErrorBodySize bounds how much of a failed response body is kept.
const maxErrorBodySize = 64 * 1024

// readBodyForError reads the response body for error reporting (max 64KB)
// Uses io.LimitReader to prevent unbounded memory allocation
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// parseRetryAfter interprets a Retry-After header (RFC 9110): either
// delay-seconds or an HTTP-date. ok is false when absent or unparseable.
func parseRetryAfter(h string, now time.Time) (time.Duration, bool) {
	if h == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(h); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(h); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// backoffDelay returns the wait before retry number attempt (0-based):
// Retry-After when the server sent one, else base*2^attempt, capped at max.
func backoffDelay(attempt int, base, max time.Duration, retryAfter time.Duration, hasRetryAfter bool) time.Duration {
	delay := base << uint(attempt)
	if hasRetryAfter {
		delay = retryAfter
	}
	if delay > max || delay < 0 {
		delay = max
	}
	return delay
}
