// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/recap/internal/domain/session/ports"
	"github.com/ManuGH/recap/internal/log"
)

// Backend is a ports.Storage that owns resources.
type Backend interface {
	ports.Storage
	Close() error
}

// Options select and configure a storage backend.
type Options struct {
	Backend string // memory | file | badger | redis
	Path    string
	Redis   *redis.Options
	Prefix  string
}

// OpenStorage creates the configured backend.
func OpenStorage(ctx context.Context, opts Options) (Backend, error) {
	backend := opts.Backend
	if backend == "" {
		backend = "file"
	}
	logger := log.WithComponent("storage")
	logger.Info().Str(log.FieldBackend, backend).Str(log.FieldPath, opts.Path).Msg("opening session storage")

	switch backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "file":
		return OpenFileStorage(opts.Path)
	case "badger":
		return OpenBadgerStorage(opts.Path)
	case "redis":
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis storage: missing connection options")
		}
		return DialRedisStorage(ctx, opts.Redis, opts.Prefix)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
