// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"context"
	"time"

	"github.com/ManuGH/recap/internal/enrichment/checkpoint"
	"github.com/ManuGH/recap/internal/enrichment/lock"
	"github.com/ManuGH/recap/internal/log"
	"github.com/ManuGH/recap/internal/metrics"
)

// SweeperConfig defines checkpoint retention.
type SweeperConfig struct {
	Interval time.Duration
	// Retention is how long a dead checkpoint is kept after its last update.
	Retention  time.Duration
	MaxRetries int
}

// sweepLockTTL bounds how long the sweeper holds a session lock.
const sweepLockTTL = time.Minute

// Sweeper deletes checkpoints that can no longer be resumed: cancelled ones
// and ones whose retry budget is spent, once they are older than Retention.
// With a Locker set, sessions with a running enrichment are skipped.
type Sweeper struct {
	Store  checkpoint.Store
	Locker lock.Locker
	Conf   SweeperConfig
	Now    func() time.Time
}

// Run sweeps on every tick until ctx ends.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Conf.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.Conf.Interval)
	defer ticker.Stop()

	logger := log.WithComponent("checkpoint")
	logger.Info().Dur("interval", s.Conf.Interval).Msg("checkpoint sweeper started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logger.Warn().Err(err).Msg("checkpoint sweep failed")
			}
		}
	}
}

// SweepOnce performs one pass and returns the number of deleted checkpoints.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	logger := log.WithComponent("checkpoint")

	all, err := s.Store.List(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, cp := range all {
		if now.Sub(cp.UpdatedAt) < s.Conf.Retention {
			continue
		}
		reason := ""
		switch {
		case !cp.CanResume:
			reason = "not_resumable"
		case s.Conf.MaxRetries > 0 && cp.RetryCount >= s.Conf.MaxRetries:
			reason = "retries_exhausted"
		default:
			continue
		}
		ok, err := s.delete(ctx, cp.SessionID, cp.ID)
		if err != nil {
			logger.Warn().Err(err).Str(log.FieldSessionID, cp.SessionID).Msg("failed to delete checkpoint")
			continue
		}
		if !ok {
			logger.Debug().Str(log.FieldSessionID, cp.SessionID).Msg("checkpoint in use; sweep skipped")
			continue
		}
		deleted++
		metrics.IncCheckpointSwept(reason)
		logger.Info().
			Str(log.FieldSessionID, cp.SessionID).
			Str(log.FieldCheckpointID, cp.ID).
			Str("reason", reason).
			Msg("checkpoint swept")
	}
	return deleted, nil
}

// delete removes the listed checkpoint unless its session is locked by a run
// or the checkpoint was replaced since it was listed.
func (s *Sweeper) delete(ctx context.Context, sessionID, checkpointID string) (bool, error) {
	if s.Locker != nil {
		token, ok, err := s.Locker.Acquire(ctx, sessionID, sweepLockTTL)
		if err != nil || !ok {
			return false, err
		}
		defer func() { _ = s.Locker.Release(context.WithoutCancel(ctx), sessionID, token) }()
	}
	return s.Store.CompareAndDelete(ctx, sessionID, checkpointID)
}
