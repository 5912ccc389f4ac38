// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"sync"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

// reporter serializes progress callbacks from concurrent branches.
type reporter struct {
	mu      sync.Mutex
	fn      ProgressFunc
	percent int
	stages  StageStatuses
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn}
}

func (r *reporter) set(s StageStatuses) {
	r.mu.Lock()
	r.stages = s
	r.mu.Unlock()
}

func (r *reporter) update(fn func(*StageStatuses)) {
	r.mu.Lock()
	fn(&r.stages)
	r.mu.Unlock()
}

func (r *reporter) report(stage model.Stage, percent int, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if percent > r.percent {
		r.percent = percent
	}
	if r.fn == nil {
		return
	}
	r.fn(Progress{Stage: stage, Message: msg, Percent: r.percent, Stages: r.stages})
}
