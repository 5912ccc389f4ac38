// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
)

// SessionsKey is the storage key of the session record array.
const SessionsKey = "sessions"

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository reads and writes session records kept as one JSON array
// under SessionsKey. Updates are serialized within the process; across
// processes the underlying storage is last-writer-wins.
type SessionRepository struct {
	storage ports.Storage
	mu      sync.Mutex
}

func NewSessionRepository(storage ports.Storage) *SessionRepository {
	return &SessionRepository{storage: storage}
}

// Storage exposes the underlying key-value storage.
func (r *SessionRepository) Storage() ports.Storage { return r.storage }

func (r *SessionRepository) List(ctx context.Context) ([]model.SessionRecord, error) {
	raw, found, err := r.storage.Load(ctx, SessionsKey)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}
	var out []model.SessionRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return out, nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// Put inserts rec or replaces the record with the same ID.
func (r *SessionRepository) Put(ctx context.Context, rec model.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].ID == rec.ID {
			all[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, rec)
	}
	return r.save(ctx, all)
}

// Update loads the record, applies fn and saves the array. If fn returns an
// error nothing is written.
func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*model.SessionRecord) error) (*model.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if err := fn(&all[i]); err != nil {
			return nil, err
		}
		if err := r.save(ctx, all); err != nil {
			return nil, err
		}
		out := all[i]
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

func (r *SessionRepository) save(ctx context.Context, all []model.SessionRecord) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := r.storage.Save(ctx, SessionsKey, raw); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}
