// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/recap/internal/domain/session/ports"
)

const badgerKeyPrefix = "kv:"

// BadgerStorage stores values in an embedded Badger database. It implements
// ports.Flusher: Flush syncs the value log to disk.
type BadgerStorage struct {
	db *badger.DB
}

// OpenBadgerStorage opens (or creates) a Badger database at dir. An empty dir
// opens an in-memory database.
func OpenBadgerStorage(dir string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger storage: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Load(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, false, nil
	case errors.Is(err, badger.ErrDBClosed):
		return nil, false, ports.ErrStorageClosed
	case err != nil:
		return nil, false, fmt.Errorf("badger load %s: %w", key, err)
	}
	return out, true, nil
}

func (s *BadgerStorage) Save(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), value)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ports.ErrStorageClosed
	}
	if err != nil {
		return fmt.Errorf("badger save %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStorage) Flush(context.Context) error {
	if s.db.Opts().InMemory {
		return nil
	}
	return s.db.Sync()
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}
