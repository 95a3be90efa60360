// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheUnavailable is matched by every error a Store returns when its
// backend cannot serve a request. Callers treat it as "no cache" and carry on.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Entry is one key/value pair for a batched write.
type Entry struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// Store is the key/value contract the availability service needs from a cache
// backend. Values are opaque bytes; expiry is per entry.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. A missing or expired key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// MultiGet returns one slot per input key, in input order; absent keys are nil.
	MultiGet(ctx context.Context, keys []string) ([][]byte, error)

	// SetWithTTL overwrites key with value, expiring after ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMany writes all entries in one round-trip where the backend allows it.
	SetMany(ctx context.Context, entries []Entry) error

	// DeleteMany removes keys. Missing keys are not an error.
	DeleteMany(ctx context.Context, keys []string) error

	// CountKeys counts live keys matching a glob pattern such as
	// "inventory:v1:variant:*".
	CountKeys(ctx context.Context, pattern string) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StoreError records a failed backend operation.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCacheUnavailable) true for every StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrCacheUnavailable
}

func storeErr(backend, op string, err error) error {
	return &StoreError{Backend: backend, Op: op, Err: err}
}
