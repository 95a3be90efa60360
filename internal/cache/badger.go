// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package cache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cardmarket/internal/config"
)

const backendBadger = "badger"

// BadgerStore is an embedded Store for single-node deployments without Redis.
// Expiry uses Badger's native per-entry TTL, which has one-second resolution.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) the database described by cfg.
func OpenBadgerStore(cfg config.BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for availability cache: %w", err)
	}
	return NewBadgerStoreFromDB(db), nil
}

// NewBadgerStoreFromDB wraps an already open database.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeErr(backendBadger, "get", err)
	}
	return val, true, nil
}

// MultiGet implements Store inside one read transaction.
func (s *BadgerStore) MultiGet(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if out[i], err = item.ValueCopy(nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(backendBadger, "mget", err)
	}
	return out, nil
}

// SetWithTTL implements Store.
func (s *BadgerStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.SetMany(ctx, []Entry{{Key: key, Value: value, TTL: ttl}})
}

// SetMany implements Store in a single write transaction.
func (s *BadgerStore) SetMany(_ context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if err := txn.SetEntry(badger.NewEntry([]byte(e.Key), e.Value).WithTTL(e.TTL)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr(backendBadger, "set", err)
	}
	return nil
}

// DeleteMany implements Store.
func (s *BadgerStore) DeleteMany(_ context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr(backendBadger, "del", err)
	}
	return nil
}

// CountKeys implements Store. The literal prefix of pattern bounds the
// iteration; the full glob is then matched per key. Expired keys are skipped
// by the iterator.
func (s *BadgerStore) CountKeys(ctx context.Context, pattern string) (int64, error) {
	prefix := []byte(pattern)
	if i := strings.IndexAny(pattern, "*?["); i >= 0 {
		prefix = []byte(pattern[:i])
	}

	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if ok, _ := path.Match(pattern, string(it.Item().Key())); ok {
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, storeErr(backendBadger, "count", err)
	}
	return n, nil
}

// Ping implements Store.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return storeErr(backendBadger, "ping", errStoreClosed)
	}
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger db: %w", err)
	}
	return nil
}

var _ Store = (*BadgerStore)(nil)
