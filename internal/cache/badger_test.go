// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/cardmarket/internal/config"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadgerStore(config.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	return s
}

func TestBadgerStoreContract(t *testing.T) {
	s := newTestBadgerStore(t)
	defer s.Close()
	testStoreContract(t, s)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(config.BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	if err := s.SetWithTTL(ctx, "inventory:v1:variant:disk", []byte("persisted"), time.Hour); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadgerStore(config.BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	val, ok, err := reopened.Get(ctx, "inventory:v1:variant:disk")
	if err != nil || !ok || string(val) != "persisted" {
		t.Errorf("Get() after reopen = (%q, %v, %v)", val, ok, err)
	}
}

func TestBadgerStoreClosed(t *testing.T) {
	s := newTestBadgerStore(t)
	_ = s.Close()

	if err := s.Ping(context.Background()); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Ping() after Close error = %v, want ErrCacheUnavailable", err)
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: config.CacheConfig{Backend: config.CacheBackendMemory}, want: "*cache.MemoryStore"},
		{name: "redis", cfg: config.CacheConfig{Backend: config.CacheBackendRedis, Redis: config.RedisConfig{Addr: "127.0.0.1:0"}}, want: "*cache.RedisStore"},
		{name: "badger", cfg: config.CacheConfig{Backend: config.CacheBackendBadger, Badger: config.BadgerConfig{InMemory: true}}, want: "*cache.BadgerStore"},
		{name: "unknown", cfg: config.CacheConfig{Backend: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewStore() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			defer s.Close()
			if got := typeName(s); got != tt.want {
				t.Errorf("NewStore() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*cache.MemoryStore"
	case *RedisStore:
		return "*cache.RedisStore"
	case *BadgerStore:
		return "*cache.BadgerStore"
	default:
		return "unknown"
	}
}
