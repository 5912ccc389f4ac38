// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty path means ENV-only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Load builds the configuration: defaults, then the strict YAML file, then
// environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes the YAML file on top of cfg. Unknown fields are rejected.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) envString(key, cur string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, cur)
}

func (l *Loader) envInt(key string, cur int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, cur)
}

func (l *Loader) envFloat(key string, cur float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, cur)
}

func (l *Loader) envDuration(key string, cur time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, cur)
}

func (l *Loader) envBool(key string, cur bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, cur)
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Log.Level = l.envString("RECAP_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Service = l.envString("RECAP_LOG_SERVICE", cfg.Log.Service)

	cfg.Store.Backend = l.envString("RECAP_STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Path = l.envString("RECAP_STORE_PATH", cfg.Store.Path)

	cfg.Machine.HealthInterval = l.envDuration("RECAP_HEALTH_INTERVAL", cfg.Machine.HealthInterval)
	cfg.Machine.PermissionCacheTTL = l.envDuration("RECAP_PERMISSION_CACHE_TTL", cfg.Machine.PermissionCacheTTL)
	cfg.Machine.ActionTimeout = l.envDuration("RECAP_ACTION_TIMEOUT", cfg.Machine.ActionTimeout)

	e := &cfg.Enrichment
	e.MaxCost = l.envFloat("RECAP_MAX_COST", e.MaxCost)
	e.LockTTL = l.envDuration("RECAP_LOCK_TTL", e.LockTTL)
	e.LockBackend = l.envString("RECAP_LOCK_BACKEND", e.LockBackend)
	e.CheckpointBackend = l.envString("RECAP_CHECKPOINT_BACKEND", e.CheckpointBackend)
	e.SQLitePath = l.envString("RECAP_SQLITE_PATH", e.SQLitePath)
	e.MaxRetries = l.envInt("RECAP_ENRICH_MAX_RETRIES", e.MaxRetries)
	e.InitialBackoff = l.envDuration("RECAP_ENRICH_INITIAL_BACKOFF", e.InitialBackoff)
	e.MaxBackoff = l.envDuration("RECAP_ENRICH_MAX_BACKOFF", e.MaxBackoff)
	e.MaxCheckpointRetries = l.envInt("RECAP_CHECKPOINT_MAX_RETRIES", e.MaxCheckpointRetries)
	e.SweepInterval = l.envDuration("RECAP_SWEEP_INTERVAL", e.SweepInterval)
	e.CheckpointRetention = l.envDuration("RECAP_CHECKPOINT_RETENTION", e.CheckpointRetention)
	e.CollaboratorRPS = l.envFloat("RECAP_COLLABORATOR_RPS", e.CollaboratorRPS)
	e.CollaboratorBurst = l.envInt("RECAP_COLLABORATOR_BURST", e.CollaboratorBurst)

	cfg.Redis.Addr = l.envString("RECAP_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = l.envString("RECAP_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = l.envInt("RECAP_REDIS_DB", cfg.Redis.DB)

	cfg.Telemetry.Enabled = l.envBool("RECAP_OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = l.envString("RECAP_OTEL_EXPORTER", cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = l.envString("RECAP_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("RECAP_OTEL_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Metrics.Enabled = l.envBool("RECAP_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = l.envString("RECAP_METRICS_ADDR", cfg.Metrics.Addr)
	cfg.Metrics.APIRateLimit = l.envInt("RECAP_API_RATE_LIMIT", cfg.Metrics.APIRateLimit)
}
