// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"context"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

// SessionStore is the slice of the session repository the orchestrator needs.
type SessionStore interface {
	List(ctx context.Context) ([]model.SessionRecord, error)
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	Update(ctx context.Context, id string, fn func(*model.SessionRecord) error) (*model.SessionRecord, error)
}

// AudioReviewer transcribes and reviews the audio of a session.
type AudioReviewer interface {
	ReviewAudio(ctx context.Context, rec *model.SessionRecord) (AudioOutput, error)
}

type AudioOutput struct {
	Review model.AudioReview
	Cost   float64
}

// VideoSource is the data a chapterer works from.
type VideoSource string

const (
	VideoSourceNone        VideoSource = ""
	VideoSourceRecording   VideoSource = "recording"
	VideoSourceScreenshots VideoSource = "screenshots"
)

// VideoChapterer proposes chapters for a session's video or screenshots.
type VideoChapterer interface {
	ChapterVideo(ctx context.Context, rec *model.SessionRecord, source VideoSource) (VideoOutput, error)
}

type VideoOutput struct {
	Chapters []model.VideoChapter
	Cost     float64
}

// SummaryRequest carries everything the summary collaborator sees.
type SummaryRequest struct {
	Session  *model.SessionRecord
	Audio    *model.AudioReview
	Chapters []model.VideoChapter
	// Vocabulary lists the categories and tags used by other sessions.
	Vocabulary model.Categories
}

type SummaryGenerator interface {
	Summarize(ctx context.Context, req SummaryRequest) (SummaryOutput, error)
}

type SummaryOutput struct {
	Summary model.Summary
	Cost    float64
}
