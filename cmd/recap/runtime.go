// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/recap/internal/config"
	"github.com/ManuGH/recap/internal/domain/session/store"
	"github.com/ManuGH/recap/internal/enrichment"
	"github.com/ManuGH/recap/internal/enrichment/checkpoint"
	"github.com/ManuGH/recap/internal/enrichment/lock"
	rlog "github.com/ManuGH/recap/internal/log"
	"github.com/ManuGH/recap/internal/persistence/sqlite"
)

// appRuntime owns every backend a command needs.
type appRuntime struct {
	cfg         config.AppConfig
	storage     store.Backend
	sessions    *store.SessionRepository
	db          *sql.DB
	redis       *redis.Client
	checkpoints checkpoint.Store
	locker      lock.Locker
	orch        *enrichment.Orchestrator
}

func needsSQLite(cfg config.AppConfig) bool {
	return cfg.Enrichment.CheckpointBackend == "sqlite" || cfg.Enrichment.LockBackend == "sqlite"
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// openRuntime wires storage, checkpoint, lock and the orchestrator. AI
// collaborators are not linked into the CLI, so Enrich-capable stages are
// disabled here; pricing, inspection and cancellation do not need them.
func openRuntime(ctx context.Context, cfg config.AppConfig) (rt *appRuntime, err error) {
	rt = &appRuntime{cfg: cfg}
	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	rt.storage, err = store.OpenStorage(ctx, store.Options{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		Redis:   redisOptions(cfg.Redis),
		Prefix:  cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return rt, fmt.Errorf("open session storage: %w", err)
	}
	rt.sessions = store.NewSessionRepository(rt.storage)

	if needsSQLite(cfg) {
		rt.db, err = sqlite.Open(cfg.Enrichment.SQLitePath, sqlite.DefaultConfig())
		if err != nil {
			return rt, fmt.Errorf("open enrichment database: %w", err)
		}
	}

	rt.checkpoints, err = checkpoint.NewStore(ctx, cfg.Enrichment.CheckpointBackend, rt.db)
	if err != nil {
		return rt, err
	}

	lockOpts := lock.Options{Backend: cfg.Enrichment.LockBackend, DB: rt.db, Prefix: cfg.Redis.KeyPrefix}
	if cfg.Enrichment.LockBackend == "redis" {
		rt.redis = redis.NewClient(redisOptions(cfg.Redis))
		if err = rt.redis.Ping(ctx).Err(); err != nil {
			return rt, fmt.Errorf("lock: redis ping: %w", err)
		}
		lockOpts.Redis = rt.redis
	}
	rt.locker, err = lock.New(ctx, lockOpts)
	if err != nil {
		return rt, err
	}

	rt.orch, err = enrichment.New(enrichment.Deps{
		Sessions:    rt.sessions,
		Checkpoints: rt.checkpoints,
		Locker:      rt.locker,
	}, cfg.Enrichment, enrichment.WithLogger(rlog.WithComponent("enrichment")))
	if err != nil {
		return rt, err
	}
	return rt, nil
}

// ready pings the backends that can go away underneath a running process.
func (rt *appRuntime) ready(ctx context.Context) error {
	if rt.db != nil {
		if err := rt.db.PingContext(ctx); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (rt *appRuntime) sweeper() *enrichment.Sweeper {
	return &enrichment.Sweeper{
		Store:  rt.checkpoints,
		Locker: rt.locker,
		Conf: enrichment.SweeperConfig{
			Interval:   rt.cfg.Enrichment.SweepInterval,
			Retention:  rt.cfg.Enrichment.CheckpointRetention,
			MaxRetries: rt.cfg.Enrichment.MaxCheckpointRetries,
		},
	}
}

func (rt *appRuntime) Close() error {
	var errs []error
	if rt.checkpoints != nil {
		errs = append(errs, rt.checkpoints.Close())
	}
	if rt.redis != nil {
		errs = append(errs, rt.redis.Close())
	}
	if rt.db != nil {
		errs = append(errs, rt.db.Close())
	}
	if rt.storage != nil {
		errs = append(errs, rt.storage.Close())
	}
	return errors.Join(errs...)
}
