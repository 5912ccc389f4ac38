// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breakers guard collaborator calls; one breaker per enrichment stage.
var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "recap_collaborator_breaker_state",
		Help: "Collaborator circuit breaker state (1 for the current state, 0 otherwise)",
	}, []string{"breaker", "state"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_collaborator_breaker_transitions_total",
		Help: "Collaborator circuit breaker state changes",
	}, []string{"breaker", "from", "to"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recap_collaborator_breaker_trips_total",
		Help: "Times a collaborator circuit breaker opened, by cause",
	}, []string{"breaker", "reason"})
)

var breakerStates = [...]string{"closed", "half-open", "open"}

// SetBreakerState marks state as current for the named breaker.
func SetBreakerState(breaker, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		breakerState.WithLabelValues(breaker, s).Set(v)
	}
}

func ObserveBreakerTransition(breaker, from, to string) {
	breakerTransitions.WithLabelValues(breaker, from, to).Inc()
	SetBreakerState(breaker, to)
}

func IncBreakerTrip(breaker, reason string) {
	breakerTrips.WithLabelValues(breaker, reason).Inc()
}
