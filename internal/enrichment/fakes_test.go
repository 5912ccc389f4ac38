// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/enrichment/checkpoint"
	"github.com/ManuGH/recap/internal/enrichment/lock"
)

// gate blocks a collaborator until released. entered is signalled once the
// call is inside the collaborator.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeAudio struct {
	err   error
	panic bool
	cost  float64
	gate  *gate
	calls atomic.Int32
}

func (f *fakeAudio) ReviewAudio(ctx context.Context, rec *model.SessionRecord) (AudioOutput, error) {
	f.calls.Add(1)
	if err := f.gate.wait(ctx); err != nil {
		return AudioOutput{}, err
	}
	if f.panic {
		panic("decoder crashed")
	}
	if f.err != nil {
		return AudioOutput{}, f.err
	}
	return AudioOutput{
		Review: model.AudioReview{AttachmentID: "opt-" + rec.ID, Transcript: "we shipped the parser"},
		Cost:   f.cost,
	}, nil
}

type fakeVideo struct {
	err     error
	cost    float64
	calls   atomic.Int32
	mu      sync.Mutex
	sources []VideoSource
}

func (f *fakeVideo) ChapterVideo(_ context.Context, _ *model.SessionRecord, source VideoSource) (VideoOutput, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.sources = append(f.sources, source)
	f.mu.Unlock()
	if f.err != nil {
		return VideoOutput{}, f.err
	}
	return VideoOutput{
		Chapters: []model.VideoChapter{
			{ID: "c1", StartTime: 0, EndTime: 900, Title: "Setup", Confidence: 0.9},
			{ID: "c2", StartTime: 900, EndTime: 1800, Title: "Parser work", Confidence: 0.8},
		},
		Cost: f.cost,
	}, nil
}

type fakeSummary struct {
	err   error
	cost  float64
	calls atomic.Int32
	mu    sync.Mutex
	last  SummaryRequest
}

func (f *fakeSummary) Summarize(_ context.Context, req SummaryRequest) (SummaryOutput, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.err != nil {
		return SummaryOutput{}, f.err
	}
	return SummaryOutput{
		Summary: model.Summary{Narrative: "Focused parser session", Category: "Engineering", Tags: []string{"go"}},
		Cost:    f.cost,
	}, nil
}

func (f *fakeSummary) request() SummaryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type countingLocker struct {
	lock.Locker
	acquires atomic.Int32
}

func (l *countingLocker) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	l.acquires.Add(1)
	return l.Locker.Acquire(ctx, sessionID, ttl)
}

// brokenCheckpoints fails the post-branch checkpoint advance.
type brokenCheckpoints struct {
	checkpoint.Store
}

func (b brokenCheckpoints) Update(ctx context.Context, sessionID string, u model.CheckpointUpdate) (*model.EnrichmentCheckpoint, error) {
	if u.Partial != nil {
		return nil, errors.New("disk full")
	}
	return b.Store.Update(ctx, sessionID, u)
}
