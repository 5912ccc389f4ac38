// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"time"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/enrichment/cost"
)

// StageResult is the outcome of one stage. A skipped stage is neither
// completed nor failed.
type StageResult struct {
	Completed bool          `json:"completed"`
	Skipped   bool          `json:"skipped,omitempty"`
	Cost      float64       `json:"cost"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

func (s StageResult) status() model.StageStatus {
	switch {
	case s.Completed:
		return model.StageCompleted
	case s.Skipped:
		return model.StageSkipped
	case s.Error != "":
		return model.StageFailed
	}
	return model.StagePending
}

type AudioResult struct {
	StageResult
	Review *model.AudioReview `json:"review,omitempty"`
}

type VideoResult struct {
	StageResult
	Chapters []model.VideoChapter `json:"chapters,omitempty"`
}

type SummaryResult struct {
	StageResult
	Summary *model.Summary `json:"summary,omitempty"`
}

// Result is the outcome of a run. Success is true when any stage completed.
type Result struct {
	Success   bool          `json:"success"`
	Audio     AudioResult   `json:"audio"`
	Video     VideoResult   `json:"video"`
	Summary   SummaryResult `json:"summary"`
	Estimate  cost.Estimate `json:"estimate"`
	TotalCost float64       `json:"totalCost"`
	Duration  time.Duration `json:"duration"`
	Warnings  []string      `json:"warnings,omitempty"`
}

func (r *Result) aggregate() {
	r.Success = r.Audio.Completed || r.Video.Completed || r.Summary.Completed
	r.TotalCost = r.Audio.Cost + r.Video.Cost + r.Summary.Cost
}

func (r *Result) statuses() StageStatuses {
	return StageStatuses{
		Audio:   r.Audio.status(),
		Video:   r.Video.status(),
		Summary: r.Summary.status(),
	}
}
