// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package machine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
	"github.com/ManuGH/recap/internal/log"
	"github.com/ManuGH/recap/internal/metrics"
)

const (
	anomalyPermissionRevoked = "permission_revoked"
	anomalyServiceStopped    = "service_stopped"
	anomalyProbeError        = "probe_error"
)

// healthMonitor polls permissions and service liveness while the session is
// active. It only talks to the machine by sending events.
type healthMonitor struct {
	interval time.Duration
	cfg      model.SessionConfig
	perms    ports.PermissionChecker
	services ports.Services
	logger   zerolog.Logger
	emit     func(model.RecordingStateUpdate) bool

	// modalities already reported during this active period
	reported map[model.Modality]bool
}

// startMonitor is called on entry to active. The monitor is bound to the
// current generation, so anything it sends after active is left is dropped.
func (m *Machine) startMonitor(cfg model.SessionConfig) {
	m.stopMonitor()

	ctx, cancel := context.WithCancel(m.baseCtx)
	m.cancelMonitor = cancel
	gen := m.gen

	hm := &healthMonitor{
		interval: m.opts.HealthInterval,
		cfg:      cfg,
		perms:    m.deps.Permissions,
		services: m.deps.Services,
		logger:   log.WithComponent("health-monitor").With().Str(log.FieldSessionID, m.data.SessionID).Logger(),
		reported: make(map[model.Modality]bool),
		emit: func(u model.RecordingStateUpdate) bool {
			ev := UpdateRecordingStateEvent(u)
			ev.internal = true
			ev.gen = gen
			select {
			case <-ctx.Done():
				return false
			default:
			}
			return m.deliver(ev)
		},
	}

	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		hm.run(ctx)
	}()
}

func (m *Machine) stopMonitor() {
	if m.cancelMonitor != nil {
		m.cancelMonitor()
		m.cancelMonitor = nil
	}
}

func (h *healthMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Debug().Dur("interval", h.interval).Msg("health monitor started")
	defer h.logger.Debug().Msg("health monitor stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.tick(ctx)
		}
	}
}

// tick runs one round of probes. Probe failures are logged and never end the loop.
func (h *healthMonitor) tick(ctx context.Context) {
	if inv, ok := h.perms.(ports.PermissionInvalidator); ok {
		inv.InvalidateAll()
	}

	if h.cfg.NeedsScreenRecording() {
		granted, ok := h.probePermission(ctx, ports.PermissionScreenRecording, h.screenPermission)
		if ok && !granted {
			for _, mod := range []model.Modality{model.ModalityScreenshots, model.ModalityVideo} {
				if h.capturesScreen(mod) {
					h.report(mod, anomalyPermissionRevoked)
				}
			}
		}
	}
	if h.cfg.NeedsMicrophone() {
		granted, ok := h.probePermission(ctx, ports.PermissionMicrophone, h.micPermission)
		if ok && !granted {
			h.report(model.ModalityAudio, anomalyPermissionRevoked)
		}
	}

	for _, mod := range h.cfg.EnabledModalities() {
		svc := h.services.For(mod)
		if svc == nil {
			continue
		}
		alive, ok := h.probeAlive(mod, svc)
		if ok && !alive {
			h.report(mod, anomalyServiceStopped)
		}
	}
}

func (h *healthMonitor) capturesScreen(mod model.Modality) bool {
	switch mod {
	case model.ModalityScreenshots:
		return h.cfg.ScreenshotsEnabled
	case model.ModalityVideo:
		return h.cfg.Video.Enabled && h.cfg.Video.SourceType != model.VideoSourceWebcam
	}
	return false
}

func (h *healthMonitor) screenPermission(ctx context.Context) (bool, error) {
	if h.perms == nil {
		return true, nil
	}
	return h.perms.HasScreenRecordingPermission(ctx)
}

func (h *healthMonitor) micPermission(ctx context.Context) (bool, error) {
	if h.perms == nil {
		return true, nil
	}
	return h.perms.HasMicrophonePermission(ctx)
}

// probePermission returns ok=false when the probe could not answer.
func (h *healthMonitor) probePermission(ctx context.Context, kind ports.PermissionKind, probe func(context.Context) (bool, error)) (granted, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Str("permission", string(kind)).Msg("permission probe panicked")
			metrics.IncHealthAnomaly(string(kind), anomalyProbeError)
			granted, ok = false, false
		}
	}()
	granted, err := probe(ctx)
	if err != nil {
		if ctx.Err() == nil {
			h.logger.Warn().Err(err).Str("permission", string(kind)).Msg("permission probe failed")
			metrics.IncHealthAnomaly(string(kind), anomalyProbeError)
		}
		return false, false
	}
	return granted, true
}

func (h *healthMonitor) probeAlive(mod model.Modality, svc ports.RecordingService) (alive, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Str(log.FieldModality, string(mod)).Msg("liveness probe panicked")
			metrics.IncHealthAnomaly(string(mod), anomalyProbeError)
			alive, ok = false, false
		}
	}()
	return svc.IsAlive(), true
}

func (h *healthMonitor) report(mod model.Modality, kind string) {
	if h.reported[mod] {
		return
	}
	if !h.emit(model.UpdateFor(mod, model.ServiceError)) {
		return
	}
	h.reported[mod] = true
	metrics.IncHealthAnomaly(string(mod), kind)
	h.logger.Warn().
		Str(log.FieldModality, string(mod)).
		Str("anomaly", kind).
		Msgf("%s marked as error", mod)
}
