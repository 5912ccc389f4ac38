// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sqlite opens the embedded database shared by the checkpoint store
// and the lease lock, and applies their schema migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver
)

// Config holds connection parameters.
type Config struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

func DefaultConfig() Config {
	return Config{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

// Open opens dbPath with WAL journaling and a busy timeout on every pooled
// connection. The parent directory is created if missing. ":memory:" opens a
// private in-memory database on a single connection.
func Open(dbPath string, cfg Config) (*sql.DB, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultConfig().BusyTimeout
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = DefaultConfig().MaxOpenConns
	}

	if dbPath == ":memory:" {
		cfg.MaxOpenConns = 1
	} else if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return db, nil
}

// Migration is one forward schema step. Versions start at 1 and increase by
// one per step within a module.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const migrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	module TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	applied_at_ms INTEGER NOT NULL
)`

// Migrate applies the migrations of module that are newer than its recorded
// version. Several modules can share one database file; each tracks its own
// version in schema_migrations.
func Migrate(ctx context.Context, db *sql.DB, module string, migrations []Migration) error {
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	var current int
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE module = ?", module).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: read %s version: %w", module, err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if m.Version != current+1 {
			return fmt.Errorf("sqlite: %s migration %q has version %d, expected %d", module, m.Name, m.Version, current+1)
		}
		if err := apply(ctx, db, module, m); err != nil {
			return err
		}
		current = m.Version
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, module string, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("sqlite: %s migration %q: %w", module, m.Name, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (module, version, applied_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(module) DO UPDATE SET version = excluded.version, applied_at_ms = excluded.applied_at_ms`,
		module, m.Version, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: record %s version: %w", module, err)
	}
	return tx.Commit()
}
