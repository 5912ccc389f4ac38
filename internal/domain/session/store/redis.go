// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/recap/internal/domain/session/ports"
)

// RedisStorage stores values as plain Redis strings under a key prefix.
type RedisStorage struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisStorage wraps client. Close does not close a client it did not create.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// DialRedisStorage connects and pings before returning.
func DialRedisStorage(ctx context.Context, opts *redis.Options, prefix string) (*RedisStorage, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis storage: %w", err)
	}
	return &RedisStorage{client: client, prefix: prefix, owned: true}, nil
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case errors.Is(err, redis.ErrClosed):
		return nil, false, ports.ErrStorageClosed
	case err != nil:
		return nil, false, fmt.Errorf("redis load %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStorage) Save(ctx context.Context, key string, value []byte) error {
	err := s.client.Set(ctx, s.prefix+key, value, 0).Err()
	if errors.Is(err, redis.ErrClosed) {
		return ports.ErrStorageClosed
	}
	if err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
