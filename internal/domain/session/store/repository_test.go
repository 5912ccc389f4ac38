// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

func TestSessionRepository_PutGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewMemoryStorage())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	a := model.SessionRecord{ID: "a", Name: "First", Tags: []string{"go"}}
	b := model.SessionRecord{ID: "b", Name: "Second"}
	require.NoError(t, repo.Put(ctx, a))
	require.NoError(t, repo.Put(ctx, b))

	a.Name = "First (renamed)"
	require.NoError(t, repo.Put(ctx, a))

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	if diff := cmp.Diff(a, *got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	_, err = repo.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewMemoryStorage())
	require.NoError(t, repo.Put(ctx, model.SessionRecord{ID: "a"}))

	out, err := repo.Update(ctx, "a", func(r *model.SessionRecord) error {
		r.Category = "Development"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Development", out.Category)

	boom := errors.New("boom")
	_, err = repo.Update(ctx, "a", func(r *model.SessionRecord) error {
		r.Category = "lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Development", got.Category, "a failed update writes nothing")

	_, err = repo.Update(ctx, "missing", func(*model.SessionRecord) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewMemoryStorage())
	require.NoError(t, repo.Put(ctx, model.SessionRecord{ID: "a"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "a", func(r *model.SessionRecord) error {
				r.Tags = append(r.Tags, "t")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got.Tags, 20)
}
