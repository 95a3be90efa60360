// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

/*
Package supervisor provides process supervision using suture v4.

# Overview

Long-running services are grouped into two layers:

	RootSupervisor ("cardmarket")
	├── CacheSupervisor ("cache-layer")
	│   └── PreWarmService (if PREWARM_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a pre-warm scheduler that keeps
failing backs off without touching the HTTP server.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog, which takes an *slog.Logger; logging.NewSlogLogger adapts the
global zerolog logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.Timeout,
	})
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.Timeout))
	if cfg.PreWarm.Enabled {
	    tree.AddCacheService(services.NewPreWarmService(svc, cfg.PreWarm.VariantIDs, cfg.PreWarm.Interval))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

# Configuration

TreeConfig zero values take the defaults from DefaultTreeConfig:
FailureThreshold 5, FailureDecay 30s, FailureBackoff 15s, ShutdownTimeout 10s.
*/
package supervisor
