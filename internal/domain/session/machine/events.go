// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package machine

import (
	"time"

	"github.com/ManuGH/recap/internal/domain/session/lifecycle"
	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/ports"
)

// Event is a message for the machine. Build public events with the
// constructors below.
type Event struct {
	Kind lifecycle.EventKind

	// START payload
	Config    model.SessionConfig
	Session   *model.SessionRecord
	Callbacks *ports.CaptureCallbacks

	// UPDATE_RECORDING_STATE payload
	Update model.RecordingStateUpdate

	// set on events produced by invoked tasks and the health monitor
	internal bool
	gen      uint64
	result   *taskResult
}

type taskResult struct {
	sessionID string
	config    *model.SessionConfig
	warnings  []string
	recording model.RecordingState
	at        time.Time
	errs      []MachineError
}

func StartEvent(cfg model.SessionConfig, session *model.SessionRecord, callbacks *ports.CaptureCallbacks) Event {
	return Event{Kind: lifecycle.EvStart, Config: cfg.Clone(), Session: session, Callbacks: callbacks}
}

func PauseEvent() Event           { return Event{Kind: lifecycle.EvPause} }
func ResumeEvent() Event          { return Event{Kind: lifecycle.EvResume} }
func EndEvent() Event             { return Event{Kind: lifecycle.EvEnd} }
func PersistCompleteEvent() Event { return Event{Kind: lifecycle.EvPersistComplete} }
func RetryEvent() Event           { return Event{Kind: lifecycle.EvRetry} }
func DismissEvent() Event         { return Event{Kind: lifecycle.EvDismiss} }
func ResetEvent() Event           { return Event{Kind: lifecycle.EvReset} }

// UpdateRecordingStateEvent merges u into the per-modality recording state.
func UpdateRecordingStateEvent(u model.RecordingStateUpdate) Event {
	return Event{Kind: lifecycle.EvUpdateRecordingState, Update: u}
}
