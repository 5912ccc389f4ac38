// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package machine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/recap/internal/domain/session/lifecycle"
	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
	"github.com/ManuGH/recap/internal/domain/session/validation"
	"github.com/ManuGH/recap/internal/log"
)

func (m *Machine) validateTask(cfg model.SessionConfig) func(context.Context) Event {
	return func(ctx context.Context) Event {
		if err := validation.ValidateConfig(cfg); err != nil {
			return failure(lifecycle.EvValidationFailed, ErrorKindValidation, err.Error())
		}
		res, err := validation.ResolveAudioDevices(ctx, m.deps.Devices, cfg.Audio)
		if err != nil {
			return failure(lifecycle.EvValidationFailed, ErrorKindValidation, err.Error())
		}
		for _, w := range res.Warnings {
			m.logger.Warn().Str("warning", w).Msg("audio device fallback")
		}
		cfg.Audio = res.Audio
		return Event{Kind: lifecycle.EvValidated, result: &taskResult{
			sessionID: m.opts.NewSessionID(),
			config:    &cfg,
			warnings:  res.Warnings,
		}}
	}
}

func (m *Machine) permissionsTask(cfg model.SessionConfig) func(context.Context) Event {
	return func(ctx context.Context) Event {
		if m.deps.Permissions == nil {
			return Event{Kind: lifecycle.EvPermissionsGranted, result: &taskResult{}}
		}
		logger := log.WithContext(ctx, m.logger)

		var missing []string
		if cfg.NeedsScreenRecording() {
			ok, err := m.deps.Permissions.HasScreenRecordingPermission(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("screen recording permission check failed")
			}
			if !ok {
				missing = append(missing, ports.PermissionScreenRecording.Label())
			}
		}
		if cfg.NeedsMicrophone() {
			ok, err := m.deps.Permissions.HasMicrophonePermission(ctx)
			if err == nil && !ok {
				ok, err = m.deps.Permissions.RequestMicrophonePermission(ctx)
			}
			if err != nil {
				logger.Warn().Err(err).Msg("microphone permission check failed")
			}
			if !ok {
				missing = append(missing, ports.PermissionMicrophone.Label())
			}
		}

		if len(missing) > 0 {
			return failure(lifecycle.EvPermissionsDenied, ErrorKindPermission,
				"Missing permissions: "+strings.Join(missing, ", "))
		}
		return Event{Kind: lifecycle.EvPermissionsGranted, result: &taskResult{}}
	}
}

// startTask starts every enabled service. All starts are attempted; if any
// fail, the ones that did start are stopped again before reporting failure.
func (m *Machine) startTask(handle ports.SessionHandle) func(context.Context) Event {
	return func(ctx context.Context) Event {
		logger := log.WithContext(ctx, m.logger)
		rec := model.IdleRecordingState()
		var (
			errs    []string
			started []model.Modality
		)
		for _, mod := range handle.Config.EnabledModalities() {
			svc := m.deps.Services.For(mod)
			if svc == nil {
				rec = rec.With(mod, model.ServiceError)
				errs = append(errs, fmt.Sprintf("%s: no recording service configured", mod))
				continue
			}
			rec = rec.With(mod, model.ServiceInitializing)
			if err := svc.Start(ctx, handle); err != nil {
				rec = rec.With(mod, model.ServiceError)
				errs = append(errs, fmt.Sprintf("failed to start %s: %v", mod, err))
				continue
			}
			rec = rec.With(mod, model.ServiceActive)
			started = append(started, mod)
		}

		if len(errs) > 0 {
			for _, mod := range started {
				if err := m.deps.Services.For(mod).Stop(ctx); err != nil {
					logger.Warn().Err(err).Str(log.FieldModality, string(mod)).Msg("stop after failed start")
					continue
				}
				rec = rec.With(mod, model.ServiceStopped)
			}
			ev := failure(lifecycle.EvStartFailed, ErrorKindServiceStart, errs...)
			ev.result.recording = rec
			return ev
		}
		return Event{Kind: lifecycle.EvServicesStarted, result: &taskResult{
			recording: rec,
			at:        m.opts.Now(),
		}}
	}
}

func (m *Machine) pauseTask(cfg model.SessionConfig, rec model.RecordingState) func(context.Context) Event {
	return m.transitionServices(cfg, rec, serviceStep{
		verb:     "pause",
		call:     ports.RecordingService.Pause,
		target:   model.ServicePaused,
		done:     lifecycle.EvServicesPaused,
		failed:   lifecycle.EvPauseFailed,
		failKind: ErrorKindServicePause,
	})
}

func (m *Machine) resumeTask(cfg model.SessionConfig, rec model.RecordingState) func(context.Context) Event {
	return m.transitionServices(cfg, rec, serviceStep{
		verb:     "resume",
		call:     ports.RecordingService.Resume,
		target:   model.ServiceActive,
		done:     lifecycle.EvServicesResumed,
		failed:   lifecycle.EvResumeFailed,
		failKind: ErrorKindServiceResume,
	})
}

type serviceStep struct {
	verb     string
	call     func(ports.RecordingService, context.Context) error
	target   model.RecordingServiceState
	done     lifecycle.EventKind
	failed   lifecycle.EventKind
	failKind ErrorKind
}

// transitionServices applies step to every enabled service and collects failures.
func (m *Machine) transitionServices(cfg model.SessionConfig, rec model.RecordingState, step serviceStep) func(context.Context) Event {
	return func(ctx context.Context) Event {
		var errs []string
		for _, mod := range cfg.EnabledModalities() {
			svc := m.deps.Services.For(mod)
			if svc == nil {
				continue
			}
			if err := step.call(svc, ctx); err != nil {
				rec = rec.With(mod, model.ServiceError)
				errs = append(errs, fmt.Sprintf("failed to %s %s: %v", step.verb, mod, err))
				continue
			}
			rec = rec.With(mod, step.target)
		}
		if len(errs) > 0 {
			ev := failure(step.failed, step.failKind, errs...)
			ev.result.recording = rec
			return ev
		}
		return Event{Kind: step.done, result: &taskResult{recording: rec}}
	}
}

// stopTask stops every enabled service and flushes storage. Failures are
// logged; ending a session never fails.
func (m *Machine) stopTask(cfg model.SessionConfig) func(context.Context) Event {
	return func(ctx context.Context) Event {
		logger := log.WithContext(ctx, m.logger)
		for _, mod := range cfg.EnabledModalities() {
			svc := m.deps.Services.For(mod)
			if svc == nil {
				continue
			}
			if err := svc.Stop(ctx); err != nil {
				logger.Warn().Err(err).Str(log.FieldModality, string(mod)).Msg("failed to stop recording service")
			}
		}
		if f, ok := m.deps.Storage.(ports.Flusher); ok {
			if err := f.Flush(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to flush pending writes")
			}
		}

		rec := model.RecordingState{
			Screenshots: model.ServiceStopped,
			Audio:       model.ServiceStopped,
			Video:       model.ServiceStopped,
		}
		return Event{Kind: lifecycle.EvServicesStopped, result: &taskResult{recording: rec, at: m.opts.Now()}}
	}
}
