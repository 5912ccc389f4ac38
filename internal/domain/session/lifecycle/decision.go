// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

const (
	IgnoredCompletedAbsorbing = "completed_absorbing"
	IgnoredRequiresRecording  = "requires_recording"
	IgnoredRequiresPaused     = "requires_paused"
	IgnoredRequiresError      = "requires_error"
	IgnoredAlreadyStarted     = "already_started"
	IgnoredRequiresPersisting = "requires_persisting"
	IgnoredStaleCompletion    = "stale_completion"
	IgnoredUnknownEvent       = "unknown_event"
)

// DecisionFor returns the decision for state×event. Events without a
// transition are ignored; the reason is kept for debug logging only.
func DecisionFor(from State, ev EventKind) Decision {
	if _, ok := TransitionFor(from, ev); ok {
		return Decision{Allowed: true}
	}
	return Decision{Reason: ignoredReason(from, ev)}
}

func ignoredReason(from State, ev EventKind) string {
	if from == StateCompleted {
		return IgnoredCompletedAbsorbing
	}
	switch ev {
	case EvStart:
		return IgnoredAlreadyStarted
	case EvPause, EvUpdateRecordingState:
		return IgnoredRequiresRecording
	case EvEnd:
		return IgnoredRequiresRecording
	case EvResume:
		return IgnoredRequiresPaused
	case EvRetry, EvDismiss:
		return IgnoredRequiresError
	case EvPersistComplete:
		return IgnoredRequiresPersisting
	}
	for _, k := range AllEvents() {
		if k == ev {
			return IgnoredStaleCompletion
		}
	}
	return IgnoredUnknownEvent
}
