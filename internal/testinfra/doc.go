// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

//go:build integration

// Package testinfra provides test infrastructure for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// # Redis Container
//
// NewRedisContainer starts a throwaway Redis via testcontainers-go so the
// Redis cache adapter can be exercised against a real server rather than
// miniredis:
//
//	redisC, err := testinfra.NewRedisContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.CleanupContainer(t, redisC)
//
// # Mock Commerce Backend
//
// MockCommerceServer serves the admin and store variant endpoints and the
// health endpoint from an in-memory variant table, captures every request,
// and can force either endpoint to fail so the dual-endpoint fallback and the
// circuit breaker can be driven end to end.
//
// Tests skip when Docker is unavailable or -short is set.
package testinfra
