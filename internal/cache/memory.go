// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"
)

const backendMemory = "memory"

var errStoreClosed = errors.New("store closed")

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store with per-entry TTL.
//
// Expired entries are invisible to reads immediately and reclaimed by a
// background sweep. It is meant for development and tests; entries are not
// shared between replicas.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
	closed  bool

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemoryStore creates a MemoryStore that sweeps expired entries every
// cleanupInterval. A non-positive interval disables the sweep.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, storeErr(backendMemory, "get", errStoreClosed)
	}
	v, ok := s.lookup(key)
	return v, ok, nil
}

// MultiGet implements Store.
func (s *MemoryStore) MultiGet(_ context.Context, keys []string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storeErr(backendMemory, "mget", errStoreClosed)
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := s.lookup(k); ok {
			out[i] = v
		}
	}
	return out, nil
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(key string) ([]byte, bool) {
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, true
}

// SetWithTTL implements Store.
func (s *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeErr(backendMemory, "set", errStoreClosed)
	}
	s.put(key, value, ttl)
	return nil
}

// SetMany implements Store.
func (s *MemoryStore) SetMany(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeErr(backendMemory, "set", errStoreClosed)
	}
	for _, e := range entries {
		s.put(e.Key, e.Value, e.TTL)
	}
	return nil
}

// put must be called with mu held.
func (s *MemoryStore) put(key string, value []byte, ttl time.Duration) {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.entries[key] = memoryEntry{value: cp, expiresAt: s.now().Add(ttl)}
}

// DeleteMany implements Store.
func (s *MemoryStore) DeleteMany(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeErr(backendMemory, "del", errStoreClosed)
	}
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// CountKeys implements Store.
func (s *MemoryStore) CountKeys(_ context.Context, pattern string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, storeErr(backendMemory, "count", errStoreClosed)
	}
	now := s.now()
	var n int64
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			n++
		}
	}
	return n, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storeErr(backendMemory, "ping", errStoreClosed)
	}
	return nil
}

// Close stops the sweep. Later calls fail with ErrCacheUnavailable.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (s *MemoryStore) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
