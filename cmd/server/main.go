// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cardmarket/internal/api"
	"github.com/tomtom215/cardmarket/internal/availability"
	"github.com/tomtom215/cardmarket/internal/cache"
	"github.com/tomtom215/cardmarket/internal/commerce"
	"github.com/tomtom215/cardmarket/internal/config"
	"github.com/tomtom215/cardmarket/internal/logging"
	"github.com/tomtom215/cardmarket/internal/supervisor"
	"github.com/tomtom215/cardmarket/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("upstream", cfg.Upstream.BaseURL).
		Str("cache_backend", cfg.Cache.Backend).
		Str("key_version", cfg.Cache.KeyVersion).
		Str("admin_token", logging.MaskSecret(cfg.Upstream.APIToken)).
		Str("publishable_key", logging.MaskSecret(cfg.Upstream.PublishableKey)).
		Bool("prewarm_enabled", cfg.PreWarm.Enabled).
		Msg("Starting Cardmarket inventory service")

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("Failed to open availability cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing availability cache")
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		// Cache failures degrade to upstream reads, so this is not fatal.
		logging.Warn().Err(err).Msg("Availability cache not reachable at startup")
	}
	pingCancel()

	upstream := commerce.NewBreakerClient(commerce.NewClient(cfg.Upstream), cfg.Breaker)
	svc := availability.NewService(store, upstream, cfg.Cache, cfg.Batch)

	handler := api.NewHandler(svc, cfg.Batch)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.Timeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.Timeout))
	if cfg.PreWarm.Enabled {
		tree.AddCacheService(services.NewPreWarmService(svc, cfg.PreWarm.VariantIDs, cfg.PreWarm.Interval))
		logging.Info().
			Int("variants", len(cfg.PreWarm.VariantIDs)).
			Dur("interval", cfg.PreWarm.Interval).
			Msg("Pre-warm scheduler added")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, s := range unstopped {
			logging.Warn().Str("service", s.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
