// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enrichmentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_enrichment_runs_total",
		Help: "Enrichment runs by result",
	}, []string{"result"}) // result=success|failed|noop|cost_exceeded|lock_busy|error

	enrichmentStages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_enrichment_stage_total",
		Help: "Enrichment stage outcomes",
	}, []string{"stage", "result"}) // result=completed|failed|skipped

	enrichmentCost = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recap_enrichment_cost",
		Help:    "Actual cost of completed enrichment runs",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	enrichmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recap_enrichment_stage_duration_seconds",
		Help:    "Wall-clock duration of enrichment stages",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"stage"})

	enrichmentLockBusy = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recap_enrichment_lock_busy_total",
		Help: "Enrichment attempts rejected because another run holds the lock",
	})

	enrichmentRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_enrichment_retries_total",
		Help: "Collaborator call retries by stage",
	}, []string{"stage"})

	checkpointsSwept = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_checkpoints_swept_total",
		Help: "Checkpoints removed by the sweeper",
	}, []string{"reason"}) // reason=not_resumable|retries_exhausted
)

func IncEnrichmentRun(result string) {
	enrichmentRuns.WithLabelValues(result).Inc()
}

func IncEnrichmentStage(stage, result string) {
	enrichmentStages.WithLabelValues(stage, result).Inc()
}

func ObserveEnrichmentCost(cost float64) {
	enrichmentCost.Observe(cost)
}

func ObserveStageDuration(stage string, seconds float64) {
	enrichmentDuration.WithLabelValues(stage).Observe(seconds)
}

func IncEnrichmentLockBusy() {
	enrichmentLockBusy.Inc()
}

func IncEnrichmentRetry(stage string) {
	enrichmentRetries.WithLabelValues(stage).Inc()
}

func IncCheckpointSwept(reason string) {
	checkpointsSwept.WithLabelValues(reason).Inc()
}
