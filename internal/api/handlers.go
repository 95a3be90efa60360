// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cardmarket/internal/availability"
	"github.com/tomtom215/cardmarket/internal/config"
	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/models"
	"github.com/tomtom215/cardmarket/internal/validation"
)

// maxRequestBodySize bounds JSON request bodies. 100 ids of 128 bytes fit easily.
const maxRequestBodySize = 64 * 1024

// InventoryService is the subset of *availability.Service used by the handlers.
type InventoryService interface {
	CheckOne(ctx context.Context, variantID string, opts availability.Options) models.AvailabilityResult
	CheckMany(ctx context.Context, variantIDs []string, opts availability.Options) map[string]models.AvailabilityResult
	Invalidate(ctx context.Context, variantIDs []string) (int, error)
	PreWarm(ctx context.Context, variantIDs []string) int
	HealthCheck(ctx context.Context) models.InventoryHealth
	GetStats(ctx context.Context) models.InventoryStats
}

// Handler serves the inventory HTTP API.
type Handler struct {
	service       InventoryService
	batchMax      int
	invalidateMax int
	startTime     time.Time
}

// NewHandler creates a Handler. Configured batch limits above the hard
// ceilings in package validation are ignored by the struct tags anyway.
func NewHandler(service InventoryService, batchCfg config.BatchConfig) *Handler {
	return &Handler{
		service:       service,
		batchMax:      batchCfg.MaxSize,
		invalidateMax: batchCfg.InvalidateMaxSize,
		startTime:     time.Now(),
	}
}

// PreWarmResponse is the data payload of POST /api/v1/inventory/prewarm.
type PreWarmResponse struct {
	Requested int `json:"requested"`
	Warmed    int `json:"warmed"`
}

// InvalidateResponse is the data payload of POST /api/v1/inventory/invalidate.
type InvalidateResponse struct {
	Invalidated int `json:"invalidated"`
}

// CheckVariant handles GET /api/v1/inventory/variants/{variantID}.
func (h *Handler) CheckVariant(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	variantID := chi.URLParam(r, "variantID")
	if verr := validation.ValidateVariantID(variantID); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	opts := availability.DefaultOptions()
	var err error
	if opts.UseCache, err = boolQuery(r, "use_cache", opts.UseCache); err != nil {
		rw.ValidationError("use_cache must be a boolean", map[string]interface{}{"field": "use_cache"})
		return
	}
	if opts.IncludeLocations, err = boolQuery(r, "include_locations", opts.IncludeLocations); err != nil {
		rw.ValidationError("include_locations must be a boolean", map[string]interface{}{"field": "include_locations"})
		return
	}

	rw.Success(h.service.CheckOne(r.Context(), variantID, opts))
}

// CheckBatch handles POST /api/v1/inventory/variants/batch.
func (h *Handler) CheckBatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req validation.BatchRequest
	if !decodeAndValidate(rw, w, r, &req) {
		return
	}
	if verr := validation.ValidateIDCount("variant_ids", len(req.VariantIDs), h.batchMax); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	opts := availability.DefaultOptions()
	if req.UseCache != nil {
		opts.UseCache = *req.UseCache
	}
	opts.IncludeLocations = req.IncludeLocations

	results := h.service.CheckMany(r.Context(), req.VariantIDs, opts)
	rw.SuccessWithMeta(http.StatusOK, results, &APIMeta{Count: len(results)})
}

// Invalidate handles POST /api/v1/inventory/invalidate.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req validation.InvalidateRequest
	if !decodeAndValidate(rw, w, r, &req) {
		return
	}
	if verr := validation.ValidateIDCount("variant_ids", len(req.VariantIDs), h.invalidateMax); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	invalidated, err := h.service.Invalidate(r.Context(), req.VariantIDs)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Cache invalidation failed")
		rw.ServiceUnavailable(ErrCodeCacheUnavailable, "Cache is unavailable, entries were not invalidated")
		return
	}

	rw.Success(InvalidateResponse{Invalidated: invalidated})
}

// PreWarm handles POST /api/v1/inventory/prewarm.
func (h *Handler) PreWarm(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req validation.PreWarmRequest
	if !decodeAndValidate(rw, w, r, &req) {
		return
	}
	if verr := validation.ValidateIDCount("variant_ids", len(req.VariantIDs), h.batchMax); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	warmed := h.service.PreWarm(r.Context(), req.VariantIDs)
	rw.Success(PreWarmResponse{Requested: len(req.VariantIDs), Warmed: warmed})
}

// InventoryHealth handles GET /api/v1/inventory/health.
// The body is the same either way; unhealthy answers with 503.
func (h *Handler) InventoryHealth(w http.ResponseWriter, r *http.Request) {
	health := h.service.HealthCheck(r.Context())

	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).SuccessWithMeta(status, health, nil)
}

// InventoryStats handles GET /api/v1/inventory/stats.
func (h *Handler) InventoryStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.service.GetStats(r.Context()))
}

// HealthLive handles the liveness probe. It never touches dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// NotFound is the router's fallback handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).NotFound("Route not found")
}

// MethodNotAllowed is the router's 405 handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}

// decodeAndValidate decodes a bounded JSON body into dst and runs struct
// validation. It writes the 400 response itself and reports whether the
// handler may continue.
func decodeAndValidate(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.ValidationError("Request body too large", map[string]interface{}{"limit": maxErr.Limit})
			return false
		}
		rw.ValidationError("Invalid JSON body", map[string]interface{}{"error": err.Error()})
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		writeValidationError(rw, verr)
		return false
	}
	return true
}

func writeValidationError(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	if apiErr.Details == nil {
		rw.ValidationError(apiErr.Message, nil)
		return
	}
	rw.ValidationError(apiErr.Message, apiErr.Details)
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}
