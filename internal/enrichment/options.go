// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import "github.com/ManuGH/recap/internal/domain/session/model"

// Options controls one enrichment run.
type Options struct {
	IncludeAudio   bool
	IncludeVideo   bool
	IncludeSummary bool
	// ForceRegenerate reruns stages whose output already exists on the record.
	ForceRegenerate bool
	// MaxCost is the spend ceiling; zero uses the configured default.
	MaxCost float64
	// ResumeFromCheckpoint continues an existing checkpoint instead of starting fresh.
	ResumeFromCheckpoint bool
	OnProgress           ProgressFunc
}

// DefaultOptions enables every stage.
func DefaultOptions() Options {
	return Options{IncludeAudio: true, IncludeVideo: true, IncludeSummary: true}
}

// StageStatuses is the per-stage sub-status reported with progress.
type StageStatuses struct {
	Audio   model.StageStatus `json:"audio"`
	Video   model.StageStatus `json:"video"`
	Summary model.StageStatus `json:"summary"`
}

// Progress is one progress report. Percent never decreases within a run.
type Progress struct {
	Stage   model.Stage   `json:"stage"`
	Message string        `json:"message"`
	Percent int           `json:"progress"`
	Stages  StageStatuses `json:"stages"`
}

type ProgressFunc func(Progress)
