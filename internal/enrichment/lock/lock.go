// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package lock provides the per-session enrichment lock. A lock expires after
// its TTL so a crashed run never blocks a session forever.
package lock

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker guards enrichment runs. Acquire is not reentrant: a second Acquire for
// a held session fails even from the same Locker. Every successful Acquire
// mints a fresh token; only that token releases the lease it created.
type Locker interface {
	// Acquire returns ok=false without error when another holder owns the lock.
	Acquire(ctx context.Context, sessionID string, ttl time.Duration) (token string, ok bool, err error)
	// Release drops the lock if it is still held under token.
	Release(ctx context.Context, sessionID, token string) error
	// ForceRelease drops the lock regardless of owner.
	ForceRelease(ctx context.Context, sessionID string) error
}

// Options configures New.
type Options struct {
	Backend string // memory, sqlite, redis
	DB      *sql.DB
	Redis   redis.UniversalClient
	Prefix  string
}

// New builds a Locker for the configured backend.
func New(ctx context.Context, opts Options) (Locker, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryLocker(), nil
	case "sqlite":
		if opts.DB == nil {
			return nil, fmt.Errorf("lock: sqlite backend needs a database")
		}
		return NewSqliteLocker(ctx, opts.DB)
	case "redis":
		if opts.Redis == nil {
			return nil, fmt.Errorf("lock: redis backend needs a client")
		}
		return NewRedisLocker(opts.Redis, opts.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown lock backend: %s (supported: memory, sqlite, redis)", opts.Backend)
	}
}

func newToken() string { return uuid.NewString() }

type lease struct {
	token string
	exp   time.Time
}

// MemoryLocker keeps leases in process memory.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]lease), now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, fmt.Errorf("lock: invalid ttl %s", ttl)
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.leases[sessionID]; ok && now.Before(cur.exp) {
		return "", false, nil
	}
	token := newToken()
	l.leases[sessionID] = lease{token: token, exp: now.Add(ttl)}
	return token, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, sessionID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.leases[sessionID]; ok && cur.token == token {
		delete(l.leases, sessionID)
	}
	return nil
}

func (l *MemoryLocker) ForceRelease(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, sessionID)
	return nil
}

// Held reports whether sessionID currently has an unexpired lease.
func (l *MemoryLocker) Held(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.leases[sessionID]
	return ok && l.now().Before(cur.exp)
}
