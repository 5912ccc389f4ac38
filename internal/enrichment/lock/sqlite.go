// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManuGH/recap/internal/persistence/sqlite"
)

var migrations = []sqlite.Migration{
	{Version: 1, Name: "enrichment_locks", SQL: `
	CREATE TABLE IF NOT EXISTS enrichment_locks (
		session_id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		expires_at_ms INTEGER NOT NULL
	);`},
}

// SqliteLocker stores leases in the shared SQLite database so separate
// processes on one host see each other's locks.
type SqliteLocker struct {
	db  *sql.DB
	now func() time.Time
}

func NewSqliteLocker(ctx context.Context, db *sql.DB) (*SqliteLocker, error) {
	if err := sqlite.Migrate(ctx, db, "lock", migrations); err != nil {
		return nil, fmt.Errorf("lock: migration failed: %w", err)
	}
	return &SqliteLocker{db: db, now: time.Now}, nil
}

// Acquire inserts the lease, or takes over a row whose lease has expired.
func (l *SqliteLocker) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, fmt.Errorf("lock: invalid ttl %s", ttl)
	}
	token := newToken()
	now := l.now().UnixMilli()
	res, err := l.db.ExecContext(ctx, `
	INSERT INTO enrichment_locks (session_id, owner, expires_at_ms) VALUES (?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		owner = excluded.owner,
		expires_at_ms = excluded.expires_at_ms
	WHERE enrichment_locks.expires_at_ms <= ?`,
		sessionID, token, now+ttl.Milliseconds(), now)
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", false, err
	}
	if n != 1 {
		return "", false, nil
	}
	return token, true, nil
}

func (l *SqliteLocker) Release(ctx context.Context, sessionID, token string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM enrichment_locks WHERE session_id = ? AND owner = ?`, sessionID, token)
	return err
}

func (l *SqliteLocker) ForceRelease(ctx context.Context, sessionID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM enrichment_locks WHERE session_id = ?`, sessionID)
	return err
}
