// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	storeBackends      = []string{"memory", "file", "badger", "redis"}
	lockBackends       = []string{"memory", "sqlite", "redis"}
	checkpointBackends = []string{"memory", "sqlite"}
	exporterTypes      = []string{"grpc", "http"}
)

// Validate checks the configuration and returns every problem found, joined.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !slices.Contains(storeBackends, cfg.Store.Backend) {
		add("store.backend %q must be one of %v", cfg.Store.Backend, storeBackends)
	}
	if (cfg.Store.Backend == "file" || cfg.Store.Backend == "badger") && cfg.Store.Path == "" {
		add("store.path is required for backend %q", cfg.Store.Backend)
	}

	if cfg.Machine.HealthInterval <= 0 {
		add("machine.healthInterval must be positive")
	}
	if cfg.Machine.PermissionCacheTTL < 0 {
		add("machine.permissionCacheTTL must not be negative")
	}
	if cfg.Machine.ActionTimeout <= 0 {
		add("machine.actionTimeout must be positive")
	}

	e := cfg.Enrichment
	if e.MaxCost <= 0 {
		add("enrichment.maxCost must be positive")
	}
	if e.LockTTL <= 0 {
		add("enrichment.lockTTL must be positive")
	}
	if !slices.Contains(lockBackends, e.LockBackend) {
		add("enrichment.lockBackend %q must be one of %v", e.LockBackend, lockBackends)
	}
	if !slices.Contains(checkpointBackends, e.CheckpointBackend) {
		add("enrichment.checkpointBackend %q must be one of %v", e.CheckpointBackend, checkpointBackends)
	}
	if (e.LockBackend == "sqlite" || e.CheckpointBackend == "sqlite") && e.SQLitePath == "" {
		add("enrichment.sqlitePath is required for sqlite backends")
	}
	if e.MaxRetries < 0 {
		add("enrichment.maxRetries must not be negative")
	}
	if e.InitialBackoff <= 0 || e.MaxBackoff < e.InitialBackoff {
		add("enrichment backoff must satisfy 0 < initialBackoff <= maxBackoff")
	}
	if e.MaxCheckpointRetries < 1 {
		add("enrichment.maxCheckpointRetries must be at least 1")
	}
	if e.CollaboratorRPS <= 0 || e.CollaboratorBurst < 1 {
		add("enrichment collaborator rate limit must be positive")
	}
	if e.BreakerThreshold < 1 || e.BreakerTimeout <= 0 {
		add("enrichment circuit breaker settings must be positive")
	}
	r := e.Rates
	if r.AudioPerMinute < 0 || r.VideoPerFrame < 0 || r.SummaryPerToken < 0 {
		add("enrichment.rates must not be negative")
	}
	if r.FrameIntervalSeconds <= 0 {
		add("enrichment.rates.frameIntervalSeconds must be positive")
	}

	if (cfg.Store.Backend == "redis" || e.LockBackend == "redis") && cfg.Redis.Addr == "" {
		add("redis.addr is required for redis backends")
	}

	if cfg.Telemetry.Enabled {
		if !slices.Contains(exporterTypes, cfg.Telemetry.ExporterType) {
			add("telemetry.exporter %q must be one of %v", cfg.Telemetry.ExporterType, exporterTypes)
		}
		if cfg.Telemetry.Endpoint == "" {
			add("telemetry.endpoint is required when telemetry is enabled")
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		add("telemetry.samplingRate must be within [0,1]")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		add("metrics.addr is required when metrics are enabled")
	}
	if cfg.Metrics.APIRateLimit < 0 {
		add("metrics.apiRateLimit must not be negative")
	}

	return errors.Join(errs...)
}
