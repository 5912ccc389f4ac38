// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

const (
	DefaultHealthInterval     = 10 * time.Second
	DefaultPermissionCacheTTL = 5 * time.Second
	DefaultMaxCost            = 10.0
	DefaultLockTTL            = 30 * time.Minute
	DefaultMaxRetries         = 2
	DefaultInitialBackoff     = 5 * time.Second
	DefaultMaxBackoff         = 30 * time.Second
	DefaultMaxCheckpointRetry = 3
)

// DefaultRates returns the reference per-unit prices.
func DefaultRates() RatesConfig {
	return RatesConfig{
		AudioPerMinute:       0.026,
		VideoPerFrame:        0.0025,
		FrameIntervalSeconds: 10,
		SummaryPerToken:      0.000015,
		SummaryBaseTokens:    1500,
		TokensPerAudioMinute: 200,
		TokensPerFrame:       40,
	}
}

// Defaults returns a configuration with every field at its default.
func Defaults() AppConfig {
	return AppConfig{
		Log: LogConfig{Level: "info", Service: "recap"},
		Store: StoreConfig{
			Backend: "file",
			Path:    "data/sessions",
		},
		Machine: MachineConfig{
			HealthInterval:     DefaultHealthInterval,
			PermissionCacheTTL: DefaultPermissionCacheTTL,
			ActionTimeout:      30 * time.Second,
		},
		Enrichment: EnrichmentConfig{
			MaxCost:              DefaultMaxCost,
			LockTTL:              DefaultLockTTL,
			LockBackend:          "sqlite",
			CheckpointBackend:    "sqlite",
			SQLitePath:           "data/enrichment.db",
			MaxRetries:           DefaultMaxRetries,
			InitialBackoff:       DefaultInitialBackoff,
			MaxBackoff:           DefaultMaxBackoff,
			MaxCheckpointRetries: DefaultMaxCheckpointRetry,
			SweepInterval:        10 * time.Minute,
			CheckpointRetention:  7 * 24 * time.Hour,
			CollaboratorRPS:      2,
			CollaboratorBurst:    4,
			BreakerThreshold:     5,
			BreakerTimeout:       time.Minute,
			Rates:                DefaultRates(),
		},
		Redis: RedisConfig{Addr: "localhost:6379", KeyPrefix: "recap:"},
		Telemetry: TelemetryConfig{
			ServiceName:  "recap",
			ExporterType: "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		Metrics: MetricsConfig{Addr: ":9464", APIRateLimit: 120},
	}
}
