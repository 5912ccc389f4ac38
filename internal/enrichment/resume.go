// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/store"
	"github.com/ManuGH/recap/internal/enrichment/checkpoint"
	"github.com/ManuGH/recap/internal/log"
)

// Checkpoint returns the stored checkpoint of a session.
func (o *Orchestrator) Checkpoint(ctx context.Context, sessionID string) (*model.EnrichmentCheckpoint, error) {
	cp, err := o.deps.Checkpoints.Load(ctx, sessionID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, sessionID)
	}
	return cp, err
}

// Cancel force-releases the session's lock and marks its checkpoint
// cancelled, which keeps it non-resumable even if an in-flight run later
// fails. In-flight branch work is not interrupted.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}
	logger := log.WithContext(log.ContextWithSessionID(ctx, sessionID), o.logger)

	if err := o.deps.Locker.ForceRelease(ctx, sessionID); err != nil {
		return fmt.Errorf("force release lock: %w", err)
	}
	_, err := o.deps.Checkpoints.Update(ctx, sessionID, model.CheckpointUpdate{Cancel: true})
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
		logger.Debug().Msg("cancel: no checkpoint to disable")
	case err != nil:
		return fmt.Errorf("disable checkpoint: %w", err)
	}
	logger.Info().Msg("enrichment cancelled")
	return nil
}

// Resume reruns the pipeline from a session's checkpoint, skipping stages
// whose results are already durable. Each call consumes one retry.
func (o *Orchestrator) Resume(ctx context.Context, sessionID string, onProgress ProgressFunc) (*Result, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}
	cp, err := o.Checkpoint(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cp.CanResume {
		return nil, fmt.Errorf("%w: %s", ErrNotResumable, sessionID)
	}
	if cp.RetryCount >= o.cfg.MaxCheckpointRetries {
		return nil, fmt.Errorf("%w: %d of %d retries used", ErrRetriesExhausted, cp.RetryCount, o.cfg.MaxCheckpointRetries)
	}

	rec, err := o.deps.Sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	retries := cp.RetryCount + 1
	next, err := o.deps.Checkpoints.Update(ctx, sessionID, model.CheckpointUpdate{IfID: cp.ID, RetryCount: &retries})
	if err != nil {
		return nil, fmt.Errorf("increment checkpoint retries: %w", err)
	}
	if !next.CanResume {
		return nil, fmt.Errorf("%w: %s", ErrNotResumable, sessionID)
	}
	logger := log.WithContext(log.ContextWithSessionID(ctx, sessionID), o.logger)
	logger.Info().
		Int("retry", retries).
		Bool("audio_done", cp.Partial.AudioCompleted).
		Bool("video_done", cp.Partial.VideoCompleted).
		Msg("resuming enrichment")

	opts := DefaultOptions()
	opts.IncludeAudio = !cp.Partial.AudioCompleted
	opts.IncludeVideo = !cp.Partial.VideoCompleted
	opts.ResumeFromCheckpoint = true
	opts.OnProgress = onProgress
	return o.Enrich(ctx, rec, opts)
}
