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

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/cardmarket/internal/config"
)

const (
	backendRedis = "redis"

	// scanCount is the COUNT hint per SCAN call when counting keys.
	scanCount = 500
)

// RedisStore is the shared Store used by every replica in production.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to a single Redis node. It does not dial; call Ping
// to verify connectivity.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}))
}

// NewRedisStoreFromClient wraps an existing client (single node or cluster).
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeErr(backendRedis, "get", err)
	}
	return val, true, nil
}

// MultiGet implements Store with a single MGET.
func (s *RedisStore) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeErr(backendRedis, "mget", err)
	}
	for i, v := range vals {
		switch tv := v.(type) {
		case string:
			out[i] = []byte(tv)
		case []byte:
			out[i] = tv
		}
	}
	return out, nil
}

// SetWithTTL implements Store.
func (s *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return storeErr(backendRedis, "set", err)
	}
	return nil
}

// SetMany implements Store with one pipelined round-trip of SET EX commands.
func (s *RedisStore) SetMany(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, e.Key, e.Value, e.TTL)
		}
		return nil
	})
	if err != nil {
		return storeErr(backendRedis, "set", err)
	}
	return nil
}

// DeleteMany implements Store.
func (s *RedisStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return storeErr(backendRedis, "del", err)
	}
	return nil
}

// CountKeys implements Store using incremental SCAN, never KEYS.
func (s *RedisStore) CountKeys(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return 0, storeErr(backendRedis, "count", err)
		}
		total += int64(len(keys))
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storeErr(backendRedis, "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
