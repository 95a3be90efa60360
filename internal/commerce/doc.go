// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package commerce is the client for the upstream commerce backend that owns
inventory truth.

Key Components:

  - Client: HTTP client for the variant endpoints. Tries the privileged admin
    endpoint first and falls back once to the public store endpoint. Both wire
    shapes are normalized into models.InventoryRecord.
  - BreakerClient: circuit breaker (sony/gobreaker) around any Fetcher. While
    open it fails fast with ErrBreakerOpen and never touches the network.
  - UpstreamError: failure of one endpoint call, carrying status and message.

Rate Limiting:

HTTP 429 responses are retried up to max_retries times per endpoint. The
delay is the server's Retry-After when present, otherwise exponential backoff
from retry_base_delay capped at retry_max_delay. An optional client-side
token bucket (golang.org/x/time/rate) caps outbound request rate.

Example:

	client := commerce.NewClient(cfg.Upstream)
	upstream := commerce.NewBreakerClient(client, cfg.Breaker)
	rec, err := upstream.FetchOne(ctx, "variant_01")
	if errors.Is(err, commerce.ErrBreakerOpen) {
	    // fall back without waiting on the network
	}

Thread Safety:

Client and BreakerClient are safe for concurrent use and are meant to be
shared process-wide.
*/
package commerce
