// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// testStoreContract exercises the behavior every Store must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	ks := NewKeyspace("v1")

	t.Run("get missing key is a miss, not an error", func(t *testing.T) {
		val, ok, err := s.Get(ctx, ks.VariantKey("absent"))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok || val != nil {
			t.Errorf("Get() = (%q, %v), want miss", val, ok)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		key := ks.VariantKey("set_get")
		if err := s.SetWithTTL(ctx, key, []byte(`{"available":true}`), time.Minute); err != nil {
			t.Fatalf("SetWithTTL() error = %v", err)
		}
		val, ok, err := s.Get(ctx, key)
		if err != nil || !ok {
			t.Fatalf("Get() = (%v, %v), want hit", ok, err)
		}
		if string(val) != `{"available":true}` {
			t.Errorf("Get() = %q", val)
		}
	})

	t.Run("overwrite replaces whole value", func(t *testing.T) {
		key := ks.VariantKey("overwrite")
		_ = s.SetWithTTL(ctx, key, []byte("first-longer-value"), time.Minute)
		_ = s.SetWithTTL(ctx, key, []byte("second"), time.Minute)
		val, _, _ := s.Get(ctx, key)
		if string(val) != "second" {
			t.Errorf("Get() = %q, want second", val)
		}
	})

	t.Run("multiget aligns with input order", func(t *testing.T) {
		err := s.SetMany(ctx, []Entry{
			{Key: ks.VariantKey("mg_a"), Value: []byte("A"), TTL: time.Minute},
			{Key: ks.VariantKey("mg_c"), Value: []byte("C"), TTL: time.Minute},
		})
		if err != nil {
			t.Fatalf("SetMany() error = %v", err)
		}

		vals, err := s.MultiGet(ctx, ks.VariantKeys([]string{"mg_a", "mg_b", "mg_c"}))
		if err != nil {
			t.Fatalf("MultiGet() error = %v", err)
		}
		if len(vals) != 3 {
			t.Fatalf("MultiGet() returned %d slots, want 3", len(vals))
		}
		if string(vals[0]) != "A" || vals[1] != nil || string(vals[2]) != "C" {
			t.Errorf("MultiGet() = [%q %q %q], want [A <nil> C]", vals[0], vals[1], vals[2])
		}
	})

	t.Run("multiget with no keys", func(t *testing.T) {
		vals, err := s.MultiGet(ctx, nil)
		if err != nil {
			t.Fatalf("MultiGet(nil) error = %v", err)
		}
		if len(vals) != 0 {
			t.Errorf("MultiGet(nil) = %d slots, want 0", len(vals))
		}
	})

	t.Run("delete many removes keys and tolerates missing ones", func(t *testing.T) {
		_ = s.SetWithTTL(ctx, ks.VariantKey("del_a"), []byte("x"), time.Minute)
		_ = s.SetWithTTL(ctx, ks.StaleKey("del_a"), []byte("x"), time.Minute)

		err := s.DeleteMany(ctx, []string{ks.VariantKey("del_a"), ks.StaleKey("del_a"), ks.VariantKey("never_set")})
		if err != nil {
			t.Fatalf("DeleteMany() error = %v", err)
		}
		for _, key := range []string{ks.VariantKey("del_a"), ks.StaleKey("del_a")} {
			if _, ok, _ := s.Get(ctx, key); ok {
				t.Errorf("expected %s to be deleted", key)
			}
		}
	})

	t.Run("count keys by pattern ignores stale keys", func(t *testing.T) {
		other := NewKeyspace("count")
		for i := 0; i < 4; i++ {
			id := fmt.Sprintf("c%d", i)
			_ = s.SetWithTTL(ctx, other.VariantKey(id), []byte("x"), time.Minute)
			_ = s.SetWithTTL(ctx, other.StaleKey(id), []byte("x"), time.Minute)
		}
		n, err := s.CountKeys(ctx, other.VariantPattern())
		if err != nil {
			t.Fatalf("CountKeys() error = %v", err)
		}
		if n != 4 {
			t.Errorf("CountKeys() = %d, want 4", n)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}

func TestStoreErrorMatchesCacheUnavailable(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("lookup: %w", storeErr("redis", "get", cause))

	if !errors.Is(err, ErrCacheUnavailable) {
		t.Error("expected StoreError to match ErrCacheUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected StoreError to unwrap to its cause")
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "get" || se.Backend != "redis" {
		t.Errorf("errors.As() = %+v", se)
	}
}

func TestKeyspace(t *testing.T) {
	t.Parallel()

	ks := NewKeyspace("v2")
	if got := ks.VariantKey("variant_01"); got != "inventory:v2:variant:variant_01" {
		t.Errorf("VariantKey() = %q", got)
	}
	if got := ks.StaleKey("variant_01"); got != "inventory:v2:stale:variant_01" {
		t.Errorf("StaleKey() = %q", got)
	}
	if got := ks.VariantPattern(); got != "inventory:v2:variant:*" {
		t.Errorf("VariantPattern() = %q", got)
	}
	if got := NewKeyspace("").Version(); got != "v1" {
		t.Errorf("empty version defaulted to %q, want v1", got)
	}
	keys := ks.VariantKeys([]string{"a", "b"})
	if len(keys) != 2 || keys[1] != "inventory:v2:variant:b" {
		t.Errorf("VariantKeys() = %v", keys)
	}
}
