// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package checkpoint persists enrichment progress so a failed run can resume.
// Checkpoints are keyed by session: at most one exists per session.
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

var (
	ErrNotFound = errors.New("checkpoint not found")
	// ErrConflict means the stored checkpoint no longer has the expected ID.
	ErrConflict = errors.New("checkpoint superseded")
)

// Store is the checkpoint persistence contract.
type Store interface {
	// Save inserts cp or replaces the checkpoint of the same session.
	Save(ctx context.Context, cp *model.EnrichmentCheckpoint) error
	Load(ctx context.Context, sessionID string) (*model.EnrichmentCheckpoint, error)
	// Update applies u atomically. It fails with ErrConflict when u.IfID is
	// set and does not match the stored checkpoint.
	Update(ctx context.Context, sessionID string, u model.CheckpointUpdate) (*model.EnrichmentCheckpoint, error)
	// Delete is idempotent.
	Delete(ctx context.Context, sessionID string) error
	// CompareAndDelete removes the session's checkpoint only if its ID is
	// checkpointID and reports whether it did.
	CompareAndDelete(ctx context.Context, sessionID, checkpointID string) (bool, error)
	List(ctx context.Context) ([]model.EnrichmentCheckpoint, error)
	Close() error
}

// NewStore creates a checkpoint store. The sqlite backend needs db.
func NewStore(ctx context.Context, backend string, db *sql.DB) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("checkpoint store: sqlite backend needs a database")
		}
		return NewSqliteStore(ctx, db)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend: %s (supported: sqlite, memory)", backend)
	}
}

// MemoryStore implements Store with a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.EnrichmentCheckpoint
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.EnrichmentCheckpoint), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, cp *model.EnrichmentCheckpoint) error {
	if cp == nil || cp.SessionID == "" {
		return fmt.Errorf("checkpoint: session id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[cp.SessionID] = *cp
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*model.EnrichmentCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.data[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return &cp, nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, u model.CheckpointUpdate) (*model.EnrichmentCheckpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.data[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if !u.Matches(&cp) {
		return nil, fmt.Errorf("%w: %s has %s, want %s", ErrConflict, sessionID, cp.ID, u.IfID)
	}
	u.Apply(&cp, s.now())
	s.data[sessionID] = cp
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *MemoryStore) CompareAndDelete(_ context.Context, sessionID, checkpointID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.data[sessionID]
	if !ok || cp.ID != checkpointID {
		return false, nil
	}
	delete(s.data, sessionID)
	return true, nil
}

func (s *MemoryStore) List(context.Context) ([]model.EnrichmentCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.EnrichmentCheckpoint, 0, len(s.data))
	for _, cp := range s.data {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
