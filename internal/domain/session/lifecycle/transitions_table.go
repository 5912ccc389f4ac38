// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// Transition is a single allowed edge in the session machine.
type Transition struct {
	From  State
	To    State
	Event EventKind
	// Internal transitions keep the current state without running exit or entry actions.
	Internal bool
}

// Decision records whether an event is accepted and why it is ignored otherwise.
type Decision struct {
	Allowed bool
	Reason  string
}

var transitionsTable = []Transition{
	// Start path
	{From: StateIdle, To: StateValidating, Event: EvStart},
	{From: StateError, To: StateValidating, Event: EvStart},
	{From: StateValidating, To: StateCheckingPermissions, Event: EvValidated},
	{From: StateValidating, To: StateError, Event: EvValidationFailed},
	{From: StateCheckingPermissions, To: StateStarting, Event: EvPermissionsGranted},
	{From: StateCheckingPermissions, To: StateError, Event: EvPermissionsDenied},
	{From: StateStarting, To: StateActive, Event: EvServicesStarted},
	{From: StateStarting, To: StateError, Event: EvStartFailed},

	// Recording
	{From: StateActive, To: StateActive, Event: EvUpdateRecordingState, Internal: true},
	{From: StateActive, To: StatePausing, Event: EvPause},
	{From: StateActive, To: StateEnding, Event: EvEnd},
	{From: StatePausing, To: StatePaused, Event: EvServicesPaused},
	{From: StatePausing, To: StateError, Event: EvPauseFailed},
	{From: StatePaused, To: StateResuming, Event: EvResume},
	{From: StatePaused, To: StateEnding, Event: EvEnd},
	{From: StateResuming, To: StateActive, Event: EvServicesResumed},
	{From: StateResuming, To: StateError, Event: EvResumeFailed},

	// Teardown
	{From: StateEnding, To: StatePersisting, Event: EvServicesStopped},
	{From: StatePersisting, To: StateCompleted, Event: EvPersistComplete},
	{From: StateCompleted, To: StateIdle, Event: EvAutoIdle},

	// Recovery
	{From: StateError, To: StateIdle, Event: EvRetry},
	{From: StateError, To: StateIdle, Event: EvDismiss},

	// Unconditional reset from every non-completed state
	{From: StateIdle, To: StateIdle, Event: EvReset},
	{From: StateValidating, To: StateIdle, Event: EvReset},
	{From: StateCheckingPermissions, To: StateIdle, Event: EvReset},
	{From: StateStarting, To: StateIdle, Event: EvReset},
	{From: StateActive, To: StateIdle, Event: EvReset},
	{From: StatePausing, To: StateIdle, Event: EvReset},
	{From: StatePaused, To: StateIdle, Event: EvReset},
	{From: StateResuming, To: StateIdle, Event: EvReset},
	{From: StateEnding, To: StateIdle, Event: EvReset},
	{From: StatePersisting, To: StateIdle, Event: EvReset},
	{From: StateError, To: StateIdle, Event: EvReset},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from State, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	return append([]Transition(nil), transitionsTable...)
}
