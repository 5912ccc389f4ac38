// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// EventKind names a machine event. Public kinds are sent by callers; the
// rest are emitted by invoked tasks when they finish.
type EventKind string

const (
	EvStart                EventKind = "START"
	EvPause                EventKind = "PAUSE"
	EvResume               EventKind = "RESUME"
	EvEnd                  EventKind = "END"
	EvPersistComplete      EventKind = "PERSIST_COMPLETE"
	EvUpdateRecordingState EventKind = "UPDATE_RECORDING_STATE"
	EvRetry                EventKind = "RETRY"
	EvDismiss              EventKind = "DISMISS"
	EvReset                EventKind = "RESET"
)

const (
	EvValidated          EventKind = "validation.done"
	EvValidationFailed   EventKind = "validation.failed"
	EvPermissionsGranted EventKind = "permissions.done"
	EvPermissionsDenied  EventKind = "permissions.failed"
	EvServicesStarted    EventKind = "start.done"
	EvStartFailed        EventKind = "start.failed"
	EvServicesPaused     EventKind = "pause.done"
	EvPauseFailed        EventKind = "pause.failed"
	EvServicesResumed    EventKind = "resume.done"
	EvResumeFailed       EventKind = "resume.failed"
	EvServicesStopped    EventKind = "stop.done"
	EvAutoIdle           EventKind = "completed.auto"
)

// PublicEvents lists the events a caller may send.
func PublicEvents() []EventKind {
	return []EventKind{
		EvStart, EvPause, EvResume, EvEnd, EvPersistComplete,
		EvUpdateRecordingState, EvRetry, EvDismiss, EvReset,
	}
}

// AllEvents lists public and task completion events.
func AllEvents() []EventKind {
	return append(PublicEvents(),
		EvValidated, EvValidationFailed,
		EvPermissionsGranted, EvPermissionsDenied,
		EvServicesStarted, EvStartFailed,
		EvServicesPaused, EvPauseFailed,
		EvServicesResumed, EvResumeFailed,
		EvServicesStopped, EvAutoIdle,
	)
}

// IsPublic reports whether callers may send this event.
func (k EventKind) IsPublic() bool {
	for _, p := range PublicEvents() {
		if p == k {
			return true
		}
	}
	return false
}
