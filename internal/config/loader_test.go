// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, 10*time.Second, cfg.Machine.HealthInterval)
	assert.Equal(t, 5*time.Second, cfg.Machine.PermissionCacheTTL)
	assert.Equal(t, 10.0, cfg.Enrichment.MaxCost)
	assert.Equal(t, 30*time.Minute, cfg.Enrichment.LockTTL)
	assert.Equal(t, 2, cfg.Enrichment.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Enrichment.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.Enrichment.MaxBackoff)
	assert.Equal(t, 3, cfg.Enrichment.MaxCheckpointRetries)
	assert.Equal(t, DefaultRates(), cfg.Enrichment.Rates)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: memory
machine:
  healthInterval: 3s
enrichment:
  maxCost: 2.5
  rates:
    audioPerMinute: 0.05
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 3*time.Second, cfg.Machine.HealthInterval)
	assert.Equal(t, 2.5, cfg.Enrichment.MaxCost)
	assert.Equal(t, 0.05, cfg.Enrichment.Rates.AudioPerMinute)
	assert.Equal(t, 0.0025, cfg.Enrichment.Rates.VideoPerFrame, "untouched nested fields keep defaults")
	assert.Equal(t, 30*time.Minute, cfg.Enrichment.LockTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "enrichment:\n  maxCost: 2.5\n")
	t.Setenv("RECAP_MAX_COST", "7.5")
	t.Setenv("RECAP_LOCK_BACKEND", "memory")
	t.Setenv("RECAP_HEALTH_INTERVAL", "not-a-duration")

	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 7.5, cfg.Enrichment.MaxCost)
	assert.Equal(t, "memory", cfg.Enrichment.LockBackend)
	assert.Equal(t, 10*time.Second, cfg.Machine.HealthInterval, "invalid env value falls back")
	assert.Contains(t, l.ConsumedEnvKeys, "RECAP_MAX_COST")
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "enrichment:\n  maxCots: 2\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoad_RejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n---\nlog:\n  level: info\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recap.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "").Load()
	require.ErrorContains(t, err, "unsupported config format")
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader(writeConfig(t, ""), "").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Enrichment, cfg.Enrichment)
}
