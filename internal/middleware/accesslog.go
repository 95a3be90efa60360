// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/cardmarket/internal/logging"
)

// SlowRequestThreshold is the duration above which a request is logged at warn.
const SlowRequestThreshold = time.Second

// AccessLog logs every request at debug through the request-scoped logger,
// and requests slower than SlowRequestThreshold at warn. Mount it after RequestID.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		logger := logging.Ctx(r.Context())
		event := logger.Debug()
		if duration > SlowRequestThreshold {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("HTTP request")
	})
}
