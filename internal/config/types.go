// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Machine    MachineConfig    `yaml:"machine"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Redis      RedisConfig      `yaml:"redis"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// StoreConfig selects the key-value backend session records live in.
type StoreConfig struct {
	Backend string `yaml:"backend"` // memory, file, badger, redis
	Path    string `yaml:"path"`
}

type MachineConfig struct {
	HealthInterval     time.Duration `yaml:"healthInterval"`
	PermissionCacheTTL time.Duration `yaml:"permissionCacheTTL"`
	// ActionTimeout bounds each invoked service call.
	ActionTimeout time.Duration `yaml:"actionTimeout"`
}

type EnrichmentConfig struct {
	MaxCost              float64       `yaml:"maxCost"`
	LockTTL              time.Duration `yaml:"lockTTL"`
	LockBackend          string        `yaml:"lockBackend"`       // memory, sqlite, redis
	CheckpointBackend    string        `yaml:"checkpointBackend"` // memory, sqlite
	SQLitePath           string        `yaml:"sqlitePath"`
	MaxRetries           int           `yaml:"maxRetries"`
	InitialBackoff       time.Duration `yaml:"initialBackoff"`
	MaxBackoff           time.Duration `yaml:"maxBackoff"`
	MaxCheckpointRetries int           `yaml:"maxCheckpointRetries"`
	SweepInterval        time.Duration `yaml:"sweepInterval"`
	CheckpointRetention  time.Duration `yaml:"checkpointRetention"`
	CollaboratorRPS      float64       `yaml:"collaboratorRPS"`
	CollaboratorBurst    int           `yaml:"collaboratorBurst"`
	BreakerThreshold     int           `yaml:"breakerThreshold"`
	BreakerTimeout       time.Duration `yaml:"breakerTimeout"`
	Rates                RatesConfig   `yaml:"rates"`
}

// RatesConfig holds the per-unit prices used by cost estimation.
type RatesConfig struct {
	AudioPerMinute       float64 `yaml:"audioPerMinute"`
	VideoPerFrame        float64 `yaml:"videoPerFrame"`
	FrameIntervalSeconds float64 `yaml:"frameIntervalSeconds"`
	SummaryPerToken      float64 `yaml:"summaryPerToken"`
	SummaryBaseTokens    int     `yaml:"summaryBaseTokens"`
	TokensPerAudioMinute int     `yaml:"tokensPerAudioMinute"`
	TokensPerFrame       int     `yaml:"tokensPerFrame"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	ExporterType string  `yaml:"exporter"` // grpc, http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// MetricsConfig configures the ops HTTP server that serves /metrics, health
// probes and the read-only enrichment API.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// APIRateLimit is the per-client request budget per minute on /api routes.
	APIRateLimit int `yaml:"apiRateLimit"`
}
