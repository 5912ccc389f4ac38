// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	path := writeConfig(t, "enrichment:\n  maxCost: 4\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader, path)
	var calls atomic.Int32
	h.OnReload(func(AppConfig) { calls.Add(1) })

	require.NoError(t, os.WriteFile(path, []byte("enrichment:\n  maxCost: -1\n"), 0o600))
	require.Error(t, h.Reload())
	assert.Equal(t, 4.0, h.Get().Enrichment.MaxCost)
	assert.Zero(t, calls.Load())

	require.NoError(t, os.WriteFile(path, []byte("enrichment:\n  maxCost: 6\n"), 0o600))
	require.NoError(t, h.Reload())
	assert.Equal(t, 6.0, h.Get().Enrichment.MaxCost)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHolder_WatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "enrichment:\n  maxCost: 4\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader, path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("enrichment:\n  maxCost: 8\n"), 0o600))
	require.Eventually(t, func() bool {
		return h.Get().Enrichment.MaxCost == 8
	}, 5*time.Second, 50*time.Millisecond)
}

func TestHolder_WatchWithoutPathIsNoop(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader("", ""), "")
	require.NoError(t, h.Watch(context.Background()))
}
