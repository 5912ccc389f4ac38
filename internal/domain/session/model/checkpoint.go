// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "time"

// PartialResults records enrichment output that is already durable.
type PartialResults struct {
	AudioCompleted    bool   `json:"audioCompleted,omitempty"`
	AudioAttachmentID string `json:"audioAttachmentId,omitempty"`
	VideoCompleted    bool   `json:"videoCompleted,omitempty"`
	ChapterCount      int    `json:"chapterCount,omitempty"`
	SummaryCompleted  bool   `json:"summaryCompleted,omitempty"`
}

// EnrichmentCheckpoint is the durable progress record of one enrichment run.
// At most one exists per session.
type EnrichmentCheckpoint struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"sessionId"`
	Stage      Stage          `json:"stage"`
	Progress   int            `json:"progress"`
	Partial    PartialResults `json:"partialResults"`
	RetryCount int            `json:"retryCount"`
	CanResume  bool           `json:"canResume"`
	Cancelled  bool           `json:"cancelled,omitempty"`
	LastError  string         `json:"lastError,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// CheckpointUpdate is a partial checkpoint mutation; nil fields are left untouched.
type CheckpointUpdate struct {
	// IfID makes the update conditional on the stored checkpoint ID.
	IfID       string
	Stage      *Stage
	Progress   *int
	Partial    *PartialResults
	RetryCount *int
	CanResume  *bool
	LastError  *string
	// Cancel marks the checkpoint cancelled. No later update clears it.
	Cancel bool
}

// Matches reports whether the IfID precondition holds for cp.
func (u CheckpointUpdate) Matches(cp *EnrichmentCheckpoint) bool {
	return u.IfID == "" || u.IfID == cp.ID
}

// Apply mutates cp with the non-nil fields of u and bumps UpdatedAt.
// A cancelled checkpoint never becomes resumable again.
func (u CheckpointUpdate) Apply(cp *EnrichmentCheckpoint, now time.Time) {
	if u.Stage != nil {
		cp.Stage = *u.Stage
	}
	if u.Progress != nil {
		cp.Progress = clampProgress(*u.Progress)
	}
	if u.Partial != nil {
		cp.Partial = *u.Partial
	}
	if u.RetryCount != nil {
		cp.RetryCount = *u.RetryCount
	}
	if u.CanResume != nil {
		cp.CanResume = *u.CanResume
	}
	if u.LastError != nil {
		cp.LastError = *u.LastError
	}
	if u.Cancel {
		cp.Cancelled = true
	}
	if cp.Cancelled {
		cp.CanResume = false
	}
	cp.UpdatedAt = now
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
