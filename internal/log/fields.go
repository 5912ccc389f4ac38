// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldCheckpointID  = "checkpoint_id"
	FieldLockOwner     = "lock_owner"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldModality  = "modality"
	FieldAttempt   = "attempt"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Cost fields
	FieldCost    = "cost"
	FieldMaxCost = "max_cost"

	// Storage fields
	FieldKey     = "key"
	FieldBackend = "backend"
	FieldPath    = "path"
)
