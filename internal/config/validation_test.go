// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Backend = "floppy"
	cfg.Enrichment.MaxCost = 0
	cfg.Enrichment.MaxBackoff = cfg.Enrichment.InitialBackoff / 2
	cfg.Telemetry.SamplingRate = 2

	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "store.backend")
	assert.Contains(t, msg, "maxCost")
	assert.Contains(t, msg, "backoff")
	assert.Contains(t, msg, "samplingRate")
}

func TestValidate_BackendDependencies(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Backend = "badger"
	cfg.Store.Path = ""
	cfg.Enrichment.LockBackend = "redis"
	cfg.Redis.Addr = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.path")
	assert.Contains(t, err.Error(), "redis.addr")
}

func TestValidate_TelemetryOnlyCheckedWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Telemetry.ExporterType = "carrier-pigeon"
	require.NoError(t, Validate(cfg))

	cfg.Telemetry.Enabled = true
	require.ErrorContains(t, Validate(cfg), "telemetry.exporter")
}
