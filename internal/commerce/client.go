// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package commerce

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cardmarket/internal/config"
	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/metrics"
	"github.com/tomtom215/cardmarket/internal/models"
	wire "github.com/tomtom215/cardmarket/internal/models/commerce"
)

// Endpoint labels used in errors, logs and metrics.
const (
	EndpointAdmin  = "admin"
	EndpointStore  = "store"
	EndpointHealth = "health"
)

// Client talks to the commerce backend's variant endpoints.
//
// FetchOne tries the privileged admin endpoint first and falls back once to
// the public store endpoint. One configured timeout bounds the whole lookup,
// both endpoints and every HTTP 429 retry included.
type Client struct {
	baseURL        string
	apiToken       string
	publishableKey string
	client         *http.Client
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	limiter        *rate.Limiter // nil = unlimited
	now            func() time.Time
}

// NewClient creates a commerce backend client.
func NewClient(cfg config.UpstreamConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:       cfg.APIToken,
		publishableKey: cfg.PublishableKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		retryMaxDelay:  cfg.RetryMaxDelay,
		limiter:        limiter,
		now:            time.Now,
	}
}

// FetchOne retrieves and normalizes inventory for one variant.
//
// On admin failure, 404 included, the store endpoint is tried exactly once
// unless the lookup deadline has passed or the caller's context is done. The
// returned error is the last endpoint's *UpstreamError.
func (c *Client) FetchOne(ctx context.Context, variantID string) (*models.InventoryRecord, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var admin wire.AdminVariantResponse
	adminErr := c.get(ctx, EndpointAdmin, c.variantURL("admin", variantID), &admin)
	if adminErr == nil {
		rec := normalizeAdmin(&admin.Variant, c.now().UTC())
		if rec.VariantID == "" {
			rec.VariantID = variantID
		}
		return &rec, nil
	}
	if ctx.Err() != nil {
		return nil, adminErr
	}

	logging.Ctx(ctx).Debug().
		Err(adminErr).
		Str("variant_id", variantID).
		Msg("Admin endpoint failed, trying store endpoint")

	var store wire.StoreVariantResponse
	if err := c.get(ctx, EndpointStore, c.variantURL("store", variantID), &store); err != nil {
		return nil, err
	}
	rec := normalizeStore(&store.Variant, c.now().UTC())
	if rec.VariantID == "" {
		rec.VariantID = variantID
	}
	return &rec, nil
}

// Ping performs a lightweight reachability probe against the backend.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doOnce(ctx, EndpointHealth, c.baseURL+"/health", nil)
	return err
}

func (c *Client) variantURL(surface, variantID string) string {
	return c.baseURL + "/" + surface + "/products/variants/" + url.PathEscape(variantID)
}

// get performs a GET with bounded retries on HTTP 429 and decodes the body into out.
func (c *Client) get(ctx context.Context, endpoint, reqURL string, out interface{}) error {
	for attempt := 0; ; attempt++ {
		retryAfter, err := c.doOnce(ctx, endpoint, reqURL, out)
		if err == nil {
			return nil
		}

		var upErr *UpstreamError
		if !errors.As(err, &upErr) || !upErr.RateLimited() || attempt >= c.maxRetries {
			return err
		}

		wait, hasRetryAfter := parseRetryAfter(retryAfter, c.now())
		delay := backoffDelay(attempt, c.retryBaseDelay, c.retryMaxDelay, wait, hasRetryAfter)

		metrics.RecordUpstreamRetry(endpoint)
		logging.Ctx(ctx).Warn().
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Dur("backoff", delay).
			Msg("Rate limited by commerce backend, retrying")

		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return &UpstreamError{Endpoint: endpoint, Message: "canceled during rate limit backoff", Err: ctx.Err()}
		}
	}
}

// doOnce performs a single timed HTTP call. On non-2xx it returns the
// Retry-After header value alongside the error.
func (c *Client) doOnce(ctx context.Context, endpoint, reqURL string, out interface{}) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &UpstreamError{Endpoint: endpoint, Message: "rate limiter wait", Err: err}
		}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", &UpstreamError{Endpoint: endpoint, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	switch endpoint {
	case EndpointAdmin:
		if c.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiToken)
		}
	case EndpointStore:
		if c.publishableKey != "" {
			req.Header.Set("x-publishable-api-key", c.publishableKey)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		upErr := &UpstreamError{Endpoint: endpoint, Message: "request failed", Err: err}
		metrics.RecordUpstreamRequest(endpoint, outcomeOf(upErr), time.Since(start))
		return "", upErr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readBodyForError(resp.Body)
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		upErr := &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
		metrics.RecordUpstreamRequest(endpoint, outcomeOf(upErr), time.Since(start))
		return resp.Header.Get("Retry-After"), upErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			upErr := &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
			metrics.RecordUpstreamRequest(endpoint, outcomeOf(upErr), time.Since(start))
			return "", upErr
		}
	}

	metrics.RecordUpstreamRequest(endpoint, metrics.OutcomeSuccess, time.Since(start))
	return "", nil
}

func outcomeOf(err error) string {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		return metrics.OutcomeError
	}
	switch {
	case upErr.Timeout():
		return metrics.OutcomeTimeout
	case upErr.NotFound():
		return metrics.OutcomeNotFound
	case upErr.RateLimited():
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeError
	}
}
