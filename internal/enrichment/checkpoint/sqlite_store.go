// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/persistence/sqlite"
)

var migrations = []sqlite.Migration{
	{Version: 1, Name: "enrichment_checkpoints", SQL: `
	CREATE TABLE IF NOT EXISTS enrichment_checkpoints (
		session_id TEXT PRIMARY KEY,
		checkpoint_id TEXT NOT NULL UNIQUE,
		stage TEXT NOT NULL,
		progress INTEGER NOT NULL,
		partial_json TEXT NOT NULL,
		retry_count INTEGER NOT NULL DEFAULT 0,
		can_resume BOOLEAN NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at_ms INTEGER NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_updated ON enrichment_checkpoints(updated_at_ms);`},
	{Version: 2, Name: "checkpoint_cancelled", SQL: `
	ALTER TABLE enrichment_checkpoints ADD COLUMN cancelled BOOLEAN NOT NULL DEFAULT 0;`},
}

// SqliteStore implements Store on the shared SQLite database. The caller owns db.
type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(ctx context.Context, db *sql.DB) (*SqliteStore, error) {
	if err := sqlite.Migrate(ctx, db, "checkpoint", migrations); err != nil {
		return nil, fmt.Errorf("checkpoint store: migration failed: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Save(ctx context.Context, cp *model.EnrichmentCheckpoint) error {
	if cp == nil || cp.SessionID == "" {
		return fmt.Errorf("checkpoint: session id required")
	}
	partial, err := json.Marshal(cp.Partial)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO enrichment_checkpoints
		(session_id, checkpoint_id, stage, progress, partial_json, retry_count, can_resume, cancelled, last_error, created_at_ms, updated_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		checkpoint_id = excluded.checkpoint_id,
		stage = excluded.stage,
		progress = excluded.progress,
		partial_json = excluded.partial_json,
		retry_count = excluded.retry_count,
		can_resume = excluded.can_resume,
		cancelled = excluded.cancelled,
		last_error = excluded.last_error,
		created_at_ms = excluded.created_at_ms,
		updated_at_ms = excluded.updated_at_ms`,
		cp.SessionID, cp.ID, string(cp.Stage), cp.Progress, string(partial), cp.RetryCount, cp.CanResume,
		cp.Cancelled, cp.LastError, cp.CreatedAt.UnixMilli(), cp.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.ID, err)
	}
	return nil
}

const selectColumns = `session_id, checkpoint_id, stage, progress, partial_json, retry_count, can_resume, cancelled, last_error, created_at_ms, updated_at_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner) (*model.EnrichmentCheckpoint, error) {
	var (
		cp        model.EnrichmentCheckpoint
		stage     string
		partial   string
		lastError sql.NullString
		created   int64
		updated   int64
	)
	if err := row.Scan(&cp.SessionID, &cp.ID, &stage, &cp.Progress, &partial, &cp.RetryCount,
		&cp.CanResume, &cp.Cancelled, &lastError, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(partial), &cp.Partial); err != nil {
		return nil, fmt.Errorf("decode partial results: %w", err)
	}
	cp.Stage = model.Stage(stage)
	cp.LastError = lastError.String
	cp.CreatedAt = time.UnixMilli(created).UTC()
	cp.UpdatedAt = time.UnixMilli(updated).UTC()
	return &cp, nil
}

func (s *SqliteStore) Load(ctx context.Context, sessionID string) (*model.EnrichmentCheckpoint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM enrichment_checkpoints WHERE session_id = ?`, sessionID)
	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return cp, err
}

// Update reads, mutates and writes the row in one transaction.
func (s *SqliteStore) Update(ctx context.Context, sessionID string, u model.CheckpointUpdate) (*model.EnrichmentCheckpoint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM enrichment_checkpoints WHERE session_id = ?`, sessionID)
	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	if !u.Matches(cp) {
		return nil, fmt.Errorf("%w: %s has %s, want %s", ErrConflict, sessionID, cp.ID, u.IfID)
	}

	u.Apply(cp, time.Now())
	partial, err := json.Marshal(cp.Partial)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
	UPDATE enrichment_checkpoints SET
		stage = ?, progress = ?, partial_json = ?, retry_count = ?, can_resume = ?, cancelled = ?, last_error = ?, updated_at_ms = ?
	WHERE session_id = ?`,
		string(cp.Stage), cp.Progress, string(partial), cp.RetryCount, cp.CanResume, cp.Cancelled, cp.LastError,
		cp.UpdatedAt.UnixMilli(), sessionID)
	if err != nil {
		return nil, fmt.Errorf("update checkpoint %s: %w", cp.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *SqliteStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM enrichment_checkpoints WHERE session_id = ?`, sessionID)
	return err
}

func (s *SqliteStore) CompareAndDelete(ctx context.Context, sessionID, checkpointID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM enrichment_checkpoints WHERE session_id = ? AND checkpoint_id = ?`, sessionID, checkpointID)
	if err != nil {
		return false, fmt.Errorf("delete checkpoint %s: %w", checkpointID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SqliteStore) List(ctx context.Context) ([]model.EnrichmentCheckpoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM enrichment_checkpoints ORDER BY created_at_ms`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.EnrichmentCheckpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	return out, rows.Err()
}

// Close is a no-op; the database belongs to the caller.
func (s *SqliteStore) Close() error { return nil }
