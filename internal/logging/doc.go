// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

// Package logging provides centralized zerolog-based structured logging.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("variant_id", id).Msg("Cache miss")
//	logging.Err(err).Msg("Upstream fetch failed")
//	logging.Ctx(ctx).Warn().Msg("Serving stale availability")
//
// # Components
//
//   - logger.go: global logger, level parsing, MaskSecret for credentials
//   - context.go: request and correlation ID propagation through context.Context
//   - slog_adapter.go: slog.Handler backed by zerolog, used by sutureslog
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
