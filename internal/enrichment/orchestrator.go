// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package enrichment runs post-session AI enrichment: a cost-bounded,
// lock-protected, checkpointed pipeline whose audio and video branches run
// concurrently and fail independently.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ManuGH/recap/internal/config"
	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/store"
	"github.com/ManuGH/recap/internal/enrichment/checkpoint"
	"github.com/ManuGH/recap/internal/enrichment/cost"
	"github.com/ManuGH/recap/internal/enrichment/lock"
	"github.com/ManuGH/recap/internal/log"
	"github.com/ManuGH/recap/internal/metrics"
	"github.com/ManuGH/recap/internal/resilience"
	"github.com/ManuGH/recap/internal/telemetry"
)

var (
	ErrCostExceeded         = errors.New("estimated cost exceeds limit")
	ErrEnrichmentInProgress = errors.New("enrichment already in progress")
	ErrCheckpointNotFound   = errors.New("no enrichment checkpoint")
	ErrNotResumable         = errors.New("checkpoint is not resumable")
	ErrRetriesExhausted     = errors.New("checkpoint retry budget exhausted")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// Deps are the orchestrator's collaborators. A nil AI collaborator disables
// its stage.
type Deps struct {
	Sessions    SessionStore
	Checkpoints checkpoint.Store
	Locker      lock.Locker
	Audio       AudioReviewer
	Video       VideoChapterer
	Summary     SummaryGenerator
}

type Option func(*Orchestrator)

// WithClock replaces time.Now for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator coordinates enrichment runs. It is safe for concurrent use;
// runs for the same session exclude each other through the Locker.
type Orchestrator struct {
	deps      Deps
	cfg       config.EnrichmentConfig
	estimator cost.Estimator

	audioGuard   resilience.Guard
	videoGuard   resilience.Guard
	summaryGuard resilience.Guard

	now    func() time.Time
	logger zerolog.Logger
	tracer trace.Tracer
}

func New(deps Deps, cfg config.EnrichmentConfig, opts ...Option) (*Orchestrator, error) {
	if deps.Sessions == nil || deps.Checkpoints == nil || deps.Locker == nil {
		return nil, fmt.Errorf("%w: sessions, checkpoints and locker are required", ErrInvalidArgument)
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = config.DefaultMaxCost
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = config.DefaultLockTTL
	}
	if cfg.MaxCheckpointRetries <= 0 {
		cfg.MaxCheckpointRetries = config.DefaultMaxCheckpointRetry
	}
	if cfg.Rates == (config.RatesConfig{}) {
		cfg.Rates = config.DefaultRates()
	}

	o := &Orchestrator{
		deps:      deps,
		cfg:       cfg,
		estimator: cost.NewEstimator(cfg.Rates),
		now:       time.Now,
		logger:    log.WithComponent("enrichment"),
		tracer:    telemetry.Tracer("recap.enrichment"),
	}
	for _, opt := range opts {
		opt(o)
	}

	var limiter *rate.Limiter
	if cfg.CollaboratorRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.CollaboratorRPS), max(cfg.CollaboratorBurst, 1))
	}
	o.audioGuard = o.guard(string(model.StageAudio), limiter)
	o.videoGuard = o.guard(string(model.StageVideo), limiter)
	o.summaryGuard = o.guard(string(model.StageSummary), limiter)
	return o, nil
}

func (o *Orchestrator) guard(stage string, limiter *rate.Limiter) resilience.Guard {
	return resilience.Guard{
		Limiter: limiter,
		Breaker: resilience.NewCircuitBreaker(stage, o.cfg.BreakerThreshold, o.cfg.BreakerTimeout),
		Policy: resilience.RetryPolicy{
			MaxRetries:     o.cfg.MaxRetries,
			InitialBackoff: o.cfg.InitialBackoff,
			MaxBackoff:     o.cfg.MaxBackoff,
			OnRetry: func(attempt int, err error, wait time.Duration) {
				metrics.IncEnrichmentRetry(stage)
				o.logger.Warn().Err(err).
					Str(log.FieldStage, stage).
					Int(log.FieldAttempt, attempt).
					Dur("wait", wait).
					Msg("collaborator call failed, retrying")
			},
		},
	}
}

func (o *Orchestrator) maxCost(opts Options) float64 {
	if opts.MaxCost > 0 {
		return opts.MaxCost
	}
	return o.cfg.MaxCost
}

// plan is the work a run will do after capability checks.
type plan struct {
	audio       bool
	video       bool
	summary     bool
	videoSource VideoSource
	warnings    []string
	workload    cost.Workload
}

func (p plan) hasWork() bool { return p.audio || p.video || p.summary }

func (o *Orchestrator) plan(rec *model.SessionRecord, opts Options) plan {
	c := CanEnrich(rec)
	p := plan{warnings: append([]string(nil), c.Reasons...)}

	if opts.IncludeAudio && c.Audio {
		switch {
		case o.deps.Audio == nil:
			p.warnings = append(p.warnings, "audio: no audio reviewer configured")
		case rec.AudioReview == nil || opts.ForceRegenerate:
			p.audio = true
			p.workload.AudioSeconds = rec.AudioDuration()
		}
	}
	if opts.IncludeVideo && c.Video {
		switch {
		case o.deps.Video == nil:
			p.warnings = append(p.warnings, "video: no video chapterer configured")
		case !hasChapters(rec) || opts.ForceRegenerate:
			p.video = true
			p.videoSource = c.VideoSource
			if c.VideoSource == VideoSourceRecording {
				p.workload.Frames = o.estimator.FramesForDuration(rec.VideoDuration())
			} else {
				p.workload.Frames = len(rec.Screenshots)
			}
		}
	}
	if opts.IncludeSummary {
		hasSource := p.audio || p.video || rec.AudioReview != nil || hasChapters(rec)
		stale := rec.Summary == nil || opts.ForceRegenerate || p.audio || p.video
		switch {
		case !hasSource || !stale:
		case o.deps.Summary == nil:
			p.warnings = append(p.warnings, "summary: no summary generator configured")
		default:
			p.summary = true
			p.workload.Summary = true
		}
	}
	return p
}

func hasChapters(rec *model.SessionRecord) bool {
	return rec.Video != nil && len(rec.Video.Chapters) > 0
}

// CanEnrich reports per-modality capability. It has no side effects.
func (o *Orchestrator) CanEnrich(rec *model.SessionRecord) Capability {
	return CanEnrich(rec)
}

// EstimateCost prices the run Enrich would perform with opts. It touches
// neither the lock nor any storage.
func (o *Orchestrator) EstimateCost(rec *model.SessionRecord, opts Options) (cost.Estimate, error) {
	if rec == nil {
		return cost.Estimate{}, fmt.Errorf("%w: session is required", ErrInvalidArgument)
	}
	return o.estimator.Estimate(o.plan(rec, opts).workload, o.maxCost(opts)), nil
}

// Enrich runs the pipeline for rec. Pre-flight failures (cost ceiling, lock
// contention) return before any side effect. Branch failures are reported in
// the Result; only pipeline-fatal failures return an error after the lock is
// taken, in which case the checkpoint is kept resumable and the session is
// marked failed.
func (o *Orchestrator) Enrich(ctx context.Context, rec *model.SessionRecord, opts Options) (res *Result, err error) {
	if rec == nil || rec.ID == "" {
		return nil, fmt.Errorf("%w: session with id is required", ErrInvalidArgument)
	}
	started := o.now()
	sessionID := rec.ID
	maxCost := o.maxCost(opts)

	ctx = log.ContextWithSessionID(ctx, sessionID)
	ctx, span := o.tracer.Start(ctx, "enrichment.run",
		trace.WithAttributes(telemetry.EnrichmentAttributes(sessionID, maxCost, opts.ResumeFromCheckpoint)...))
	defer span.End()
	logger := log.WithContext(ctx, o.logger)

	res = &Result{}
	prog := newReporter(opts.OnProgress)

	// validate
	p := o.plan(rec, opts)
	res.Warnings = append(res.Warnings, p.warnings...)
	res.Audio.Skipped, res.Video.Skipped, res.Summary.Skipped = !p.audio, !p.video, !p.summary
	prog.set(res.statuses())
	prog.report(model.StageValidate, 5, "checking session data")
	if !p.hasWork() {
		res.Success = true
		res.Duration = o.now().Sub(started)
		metrics.IncEnrichmentRun("noop")
		logger.Info().Strs("warnings", res.Warnings).Msg("nothing to enrich")
		prog.report(model.StageComplete, 100, "nothing to enrich")
		return res, nil
	}

	// estimate
	res.Estimate = o.estimator.Estimate(p.workload, maxCost)
	prog.report(model.StageEstimate, 10, fmt.Sprintf("estimated cost %.4f", res.Estimate.Total))
	if res.Estimate.ExceedsThreshold {
		metrics.IncEnrichmentRun("cost_exceeded")
		err := fmt.Errorf("%w: %.4f > %.4f", ErrCostExceeded, res.Estimate.Total, maxCost)
		telemetry.RecordError(span, err, "cost_exceeded")
		logger.Info().Float64(log.FieldCost, res.Estimate.Total).Float64(log.FieldMaxCost, maxCost).Msg("enrichment rejected by cost ceiling")
		return nil, err
	}

	// lock
	token, ok, err := o.deps.Locker.Acquire(ctx, sessionID, o.cfg.LockTTL)
	if err != nil {
		metrics.IncEnrichmentRun("error")
		telemetry.RecordError(span, err, "lock")
		return nil, fmt.Errorf("acquire enrichment lock: %w", err)
	}
	if !ok {
		metrics.IncEnrichmentLockBusy()
		metrics.IncEnrichmentRun("lock_busy")
		return nil, fmt.Errorf("%w: session %s", ErrEnrichmentInProgress, sessionID)
	}
	defer func() {
		if rerr := o.deps.Locker.Release(context.WithoutCancel(ctx), sessionID, token); rerr != nil {
			logger.Warn().Err(rerr).Msg("failed to release enrichment lock")
		}
	}()
	prog.report(model.StageLock, 15, "lock acquired")

	// Work must not outlive the lock.
	ctx, cancel := context.WithTimeout(ctx, o.cfg.LockTTL)
	defer cancel()

	var cp *model.EnrichmentCheckpoint
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("enrichment panicked: %v", r)
		}
		if err == nil {
			return
		}
		o.fail(context.WithoutCancel(ctx), sessionID, cp, err)
		metrics.IncEnrichmentRun("failed")
		telemetry.RecordError(span, err, "pipeline")
	}()

	// checkpoint
	cp, err = o.openCheckpoint(ctx, sessionID, opts.ResumeFromCheckpoint)
	if err != nil {
		return nil, err
	}
	ctx = log.ContextWithCheckpointID(ctx, cp.ID)
	logger = log.WithContext(ctx, o.logger)
	span.SetAttributes(attribute.String(telemetry.CheckpointIDKey, cp.ID))
	prog.report(model.StageCheckpoint, 20, "checkpoint created")
	if err = o.markInProgress(ctx, sessionID, res); err != nil {
		return nil, err
	}
	prog.report(model.StageCheckpoint, 25, "enrichment started")

	// fan-out
	o.runBranches(ctx, rec, p, res, prog)
	if err = o.persistOutputs(ctx, sessionID, res); err != nil {
		return nil, err
	}
	next, aerr := o.advanceCheckpoint(ctx, sessionID, cp, res)
	if aerr != nil {
		return nil, aerr
	}
	cp = next
	prog.report(model.StageVideo, 75, "audio and video analysis finished")

	// summary
	if p.summary {
		prog.update(func(s *StageStatuses) { s.Summary = model.StageRunning })
		prog.report(model.StageSummary, 80, "generating summary")
		o.runSummary(ctx, rec, res)
		prog.update(func(s *StageStatuses) { s.Summary = res.Summary.status() })
	}

	// aggregate and persist
	res.aggregate()
	prog.report(model.StageAggregate, 90, "saving results")
	if err = o.persistFinal(ctx, sessionID, res); err != nil {
		return nil, err
	}
	o.verifyChapters(ctx, sessionID, res, logger)

	// cleanup
	if res.Success {
		deleted, derr := o.deps.Checkpoints.CompareAndDelete(ctx, sessionID, cp.ID)
		switch {
		case derr != nil:
			logger.Warn().Err(derr).Msg("failed to delete checkpoint")
		case !deleted:
			logger.Debug().Msg("checkpoint superseded by a newer run; left in place")
		}
		metrics.IncEnrichmentRun("success")
	} else {
		canResume := true
		msg := stageErrors(res)
		_, uerr := o.deps.Checkpoints.Update(ctx, sessionID, model.CheckpointUpdate{IfID: cp.ID, CanResume: &canResume, LastError: &msg})
		if uerr != nil {
			logger.Warn().Err(uerr).Msg("failed to mark checkpoint resumable")
		}
		metrics.IncEnrichmentRun("failed")
	}
	metrics.ObserveEnrichmentCost(res.TotalCost)
	res.Duration = o.now().Sub(started)
	span.SetAttributes(
		attribute.Bool(telemetry.SuccessKey, res.Success),
		attribute.Float64(telemetry.CostKey, res.TotalCost),
	)
	logger.Info().
		Bool("success", res.Success).
		Float64(log.FieldCost, res.TotalCost).
		Dur("duration", res.Duration).
		Int("warnings", len(res.Warnings)).
		Msg("enrichment finished")
	prog.report(model.StageComplete, 100, "enrichment finished")
	return res, nil
}

// openCheckpoint writes the run's checkpoint. A resumed run keeps the
// identity, retry count and partial results of the previous checkpoint
// unless that checkpoint was cancelled.
func (o *Orchestrator) openCheckpoint(ctx context.Context, sessionID string, resume bool) (*model.EnrichmentCheckpoint, error) {
	now := o.now()
	cp := &model.EnrichmentCheckpoint{
		ID:        model.NewCheckpointID(sessionID),
		SessionID: sessionID,
		Stage:     model.StageAudio,
		Progress:  20,
		CanResume: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if resume {
		prev, err := o.deps.Checkpoints.Load(ctx, sessionID)
		switch {
		case err == nil && !prev.Cancelled:
			cp.ID, cp.RetryCount, cp.Partial, cp.CreatedAt = prev.ID, prev.RetryCount, prev.Partial, prev.CreatedAt
		case err == nil, errors.Is(err, checkpoint.ErrNotFound):
		default:
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
	}
	if err := o.deps.Checkpoints.Save(ctx, cp); err != nil {
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}
	return cp, nil
}

func (o *Orchestrator) advanceCheckpoint(ctx context.Context, sessionID string, cp *model.EnrichmentCheckpoint, res *Result) (*model.EnrichmentCheckpoint, error) {
	partial := cp.Partial
	if res.Audio.Completed {
		partial.AudioCompleted = true
		if res.Audio.Review != nil {
			partial.AudioAttachmentID = res.Audio.Review.AttachmentID
		}
	}
	if res.Video.Completed {
		partial.VideoCompleted = true
		partial.ChapterCount = len(res.Video.Chapters)
	}
	stage := model.StageSummary
	progress := 75
	next, err := o.deps.Checkpoints.Update(ctx, sessionID, model.CheckpointUpdate{
		IfID:     cp.ID,
		Stage:    &stage,
		Progress: &progress,
		Partial:  &partial,
	})
	if err != nil {
		return nil, fmt.Errorf("advance checkpoint: %w", err)
	}
	return next, nil
}

// runBranches runs audio and video concurrently. Each branch writes only its
// own result slot and always returns nil, so one failure never cancels the other.
func (o *Orchestrator) runBranches(ctx context.Context, rec *model.SessionRecord, p plan, res *Result, prog *reporter) {
	prog.update(func(s *StageStatuses) {
		if p.audio {
			s.Audio = model.StageRunning
		}
		if p.video {
			s.Video = model.StageRunning
		}
	})
	prog.report(model.StageAudio, 30, "analyzing audio and video")

	var g errgroup.Group
	if p.audio {
		g.Go(func() error {
			out, sr := runStage(ctx, o, model.StageAudio, o.audioGuard, func(ctx context.Context) (AudioOutput, error) {
				return o.deps.Audio.ReviewAudio(ctx, rec)
			})
			if sr.Completed {
				sr.Cost = out.Cost
				review := out.Review
				if review.ReviewedAt.IsZero() {
					review.ReviewedAt = o.now()
				}
				res.Audio.Review = &review
			}
			res.Audio.StageResult = sr
			prog.update(func(s *StageStatuses) { s.Audio = sr.status() })
			prog.report(model.StageAudio, 55, "audio analysis finished")
			return nil
		})
	}
	if p.video {
		g.Go(func() error {
			out, sr := runStage(ctx, o, model.StageVideo, o.videoGuard, func(ctx context.Context) (VideoOutput, error) {
				return o.deps.Video.ChapterVideo(ctx, rec, p.videoSource)
			})
			if sr.Completed {
				sr.Cost = out.Cost
				res.Video.Chapters = out.Chapters
			}
			res.Video.StageResult = sr
			prog.update(func(s *StageStatuses) { s.Video = sr.status() })
			prog.report(model.StageVideo, 55, "video analysis finished")
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) runSummary(ctx context.Context, rec *model.SessionRecord, res *Result) {
	vocab, err := o.vocabulary(ctx, rec.ID)
	if err != nil {
		logger := log.WithContext(ctx, o.logger)
		logger.Warn().Err(err).Msg("failed to load category vocabulary")
	}
	req := SummaryRequest{
		Session:    rec,
		Audio:      res.Audio.Review,
		Chapters:   res.Video.Chapters,
		Vocabulary: vocab,
	}
	if req.Audio == nil {
		req.Audio = rec.AudioReview
	}
	if req.Chapters == nil && rec.Video != nil {
		req.Chapters = rec.Video.Chapters
	}

	out, sr := runStage(ctx, o, model.StageSummary, o.summaryGuard, func(ctx context.Context) (SummaryOutput, error) {
		return o.deps.Summary.Summarize(ctx, req)
	})
	if sr.Completed {
		sr.Cost = out.Cost
		summary := out.Summary
		if summary.GeneratedAt.IsZero() {
			summary.GeneratedAt = o.now()
		}
		res.Summary.Summary = &summary
	}
	res.Summary.StageResult = sr
}

func (o *Orchestrator) vocabulary(ctx context.Context, excludeID string) (model.Categories, error) {
	all, err := o.deps.Sessions.List(ctx)
	if err != nil {
		return model.Categories{}, err
	}
	return model.CollectCategories(all, excludeID), nil
}

// runStage calls a collaborator under its guard and records the outcome.
// Panics are turned into stage failures.
func runStage[T any](ctx context.Context, o *Orchestrator, stage model.Stage, g resilience.Guard, call func(context.Context) (T, error)) (T, StageResult) {
	ctx, span := o.tracer.Start(ctx, "enrichment."+string(stage),
		trace.WithAttributes(telemetry.StageAttributes(string(stage))...))
	defer span.End()

	started := o.now()
	out, err := guarded(ctx, g, call)
	sr := StageResult{Duration: o.now().Sub(started)}
	metrics.ObserveStageDuration(string(stage), sr.Duration.Seconds())

	if err != nil {
		sr.Error = err.Error()
		telemetry.RecordError(span, err, "stage")
		metrics.IncEnrichmentStage(string(stage), "failed")
		logger := log.WithContext(ctx, o.logger)
		logger.Warn().Err(err).Str(log.FieldStage, string(stage)).Msg("enrichment stage failed")
		return out, sr
	}
	sr.Completed = true
	metrics.IncEnrichmentStage(string(stage), "completed")
	return out, sr
}

func guarded[T any](ctx context.Context, g resilience.Guard, call func(context.Context) (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collaborator panicked: %v", r)
		}
	}()
	return resilience.Do(ctx, g, call)
}

func (o *Orchestrator) updateSession(ctx context.Context, sessionID string, fn func(*model.SessionRecord) error) error {
	_, err := o.deps.Sessions.Update(ctx, sessionID, fn)
	if errors.Is(err, store.ErrSessionNotFound) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return fmt.Errorf("update session %s: %w", sessionID, err)
	}
	return nil
}

func (o *Orchestrator) markInProgress(ctx context.Context, sessionID string, res *Result) error {
	st := res.statuses()
	now := o.now()
	return o.updateSession(ctx, sessionID, func(rec *model.SessionRecord) error {
		rec.Enrichment = &model.EnrichmentInfo{
			Status:      model.EnrichmentInProgress,
			Audio:       model.StageInfo{Status: st.Audio},
			Video:       model.StageInfo{Status: st.Video},
			Summary:     model.StageInfo{Status: st.Summary},
			Warnings:    res.Warnings,
			LastUpdated: now,
		}
		return nil
	})
}

// persistOutputs stores branch outputs on the record so the checkpoint can
// point at durable results.
func (o *Orchestrator) persistOutputs(ctx context.Context, sessionID string, res *Result) error {
	if !res.Audio.Completed && !res.Video.Completed {
		return nil
	}
	return o.updateSession(ctx, sessionID, func(rec *model.SessionRecord) error {
		if res.Audio.Completed {
			rec.AudioReview = res.Audio.Review
		}
		if res.Video.Completed {
			if rec.Video == nil {
				rec.Video = &model.Video{}
			}
			rec.Video.Chapters = res.Video.Chapters
		}
		return nil
	})
}

func (o *Orchestrator) persistFinal(ctx context.Context, sessionID string, res *Result) error {
	now := o.now()
	info := func(sr StageResult) model.StageInfo {
		si := model.StageInfo{Status: sr.status(), Error: sr.Error, Cost: sr.Cost}
		if sr.Completed {
			si.CompletedAt = &now
		}
		return si
	}
	return o.updateSession(ctx, sessionID, func(rec *model.SessionRecord) error {
		if s := res.Summary.Summary; s != nil {
			rec.Summary = s
			if s.Category != "" {
				rec.Category = s.Category
			}
			if s.SubCategory != "" {
				rec.SubCategory = s.SubCategory
			}
			if len(s.Tags) > 0 {
				rec.Tags = append([]string(nil), s.Tags...)
			}
		}
		status := model.EnrichmentCompleted
		errMsg := ""
		if !res.Success {
			status = model.EnrichmentFailed
			errMsg = stageErrors(res)
		}
		rec.Enrichment = &model.EnrichmentInfo{
			Status:      status,
			Audio:       info(res.Audio.StageResult),
			Video:       info(res.Video.StageResult),
			Summary:     info(res.Summary.StageResult),
			TotalCost:   res.TotalCost,
			Warnings:    res.Warnings,
			Error:       errMsg,
			LastUpdated: now,
		}
		return nil
	})
}

// verifyChapters re-reads the record and warns if freshly written chapters
// are not visible yet. Storage is last-writer-wins, so this never fails the run.
func (o *Orchestrator) verifyChapters(ctx context.Context, sessionID string, res *Result, logger zerolog.Logger) {
	if !res.Video.Completed {
		return
	}
	rec, err := o.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("chapter verification read failed")
		return
	}
	got := 0
	if rec.Video != nil {
		got = len(rec.Video.Chapters)
	}
	if got != len(res.Video.Chapters) {
		logger.Warn().
			Int("expected", len(res.Video.Chapters)).
			Int("found", got).
			Msg("video chapters not visible after write")
	}
}

// fail records a pipeline-fatal error: the checkpoint stays resumable unless
// it was cancelled, and the session is marked failed. A run whose checkpoint
// was replaced by a newer run leaves both untouched. Errors here are logged only.
func (o *Orchestrator) fail(ctx context.Context, sessionID string, cp *model.EnrichmentCheckpoint, cause error) {
	logger := log.WithContext(ctx, o.logger)
	logger.Error().Err(cause).Msg("enrichment failed")
	msg := cause.Error()

	if cp != nil {
		canResume := true
		_, err := o.deps.Checkpoints.Update(ctx, sessionID, model.CheckpointUpdate{IfID: cp.ID, CanResume: &canResume, LastError: &msg})
		switch {
		case errors.Is(err, checkpoint.ErrConflict):
			logger.Warn().Err(err).Msg("checkpoint superseded by a newer run; session left untouched")
			return
		case err != nil:
			logger.Warn().Err(err).Msg("failed to keep checkpoint resumable")
		}
	}
	now := o.now()
	err := o.updateSession(ctx, sessionID, func(rec *model.SessionRecord) error {
		if rec.Enrichment == nil {
			rec.Enrichment = &model.EnrichmentInfo{}
		}
		rec.Enrichment.Status = model.EnrichmentFailed
		rec.Enrichment.Error = msg
		rec.Enrichment.LastUpdated = now
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to mark session enrichment failed")
	}
}

func stageErrors(res *Result) string {
	var parts []string
	for _, s := range []struct {
		name string
		err  string
	}{
		{"audio", res.Audio.Error},
		{"video", res.Video.Error},
		{"summary", res.Summary.Error},
	} {
		if s.err != "" {
			parts = append(parts, s.name+": "+s.err)
		}
	}
	if len(parts) == 0 {
		return "no enrichment stage completed"
	}
	return strings.Join(parts, "; ")
}
