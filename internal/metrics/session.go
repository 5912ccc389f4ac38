// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_session_transitions_total",
		Help: "Session machine state transitions",
	}, []string{"from", "to"})

	sessionEventsIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_session_events_ignored_total",
		Help: "Events ignored because the current state does not accept them",
	}, []string{"state", "event"})

	healthAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_health_anomalies_total",
		Help: "Anomalies detected by the health monitor",
	}, []string{"modality", "kind"}) // kind=permission_revoked|service_stopped|probe_error

	permissionCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_permission_cache_lookups_total",
		Help: "Permission cache lookups by result",
	}, []string{"permission", "result"}) // result=hit|miss
)

func IncSessionTransition(from, to string) {
	sessionTransitions.WithLabelValues(from, to).Inc()
}

func IncSessionEventIgnored(state, event string) {
	sessionEventsIgnored.WithLabelValues(state, event).Inc()
}

func IncHealthAnomaly(modality, kind string) {
	healthAnomalies.WithLabelValues(modality, kind).Inc()
}

func IncPermissionCacheLookup(permission string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	permissionCacheLookups.WithLabelValues(permission, result).Inc()
}
