// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// RecordingState is the per-modality service record owned by the session machine.
type RecordingState struct {
	Screenshots RecordingServiceState `json:"screenshots"`
	Audio       RecordingServiceState `json:"audio"`
	Video       RecordingServiceState `json:"video"`
}

// IdleRecordingState returns the all-idle record a fresh machine starts with.
func IdleRecordingState() RecordingState {
	return RecordingState{Screenshots: ServiceIdle, Audio: ServiceIdle, Video: ServiceIdle}
}

// Get returns the state for modality m.
func (r RecordingState) Get(m Modality) RecordingServiceState {
	switch m {
	case ModalityScreenshots:
		return r.Screenshots
	case ModalityAudio:
		return r.Audio
	case ModalityVideo:
		return r.Video
	}
	return ""
}

// With returns a copy with modality m set to s.
func (r RecordingState) With(m Modality, s RecordingServiceState) RecordingState {
	switch m {
	case ModalityScreenshots:
		r.Screenshots = s
	case ModalityAudio:
		r.Audio = s
	case ModalityVideo:
		r.Video = s
	}
	return r
}

// RecordingStateUpdate is a partial update; nil fields are left untouched.
type RecordingStateUpdate struct {
	Screenshots *RecordingServiceState `json:"screenshots,omitempty"`
	Audio       *RecordingServiceState `json:"audio,omitempty"`
	Video       *RecordingServiceState `json:"video,omitempty"`
}

// UpdateFor builds a single-modality update.
func UpdateFor(m Modality, s RecordingServiceState) RecordingStateUpdate {
	var u RecordingStateUpdate
	switch m {
	case ModalityScreenshots:
		u.Screenshots = &s
	case ModalityAudio:
		u.Audio = &s
	case ModalityVideo:
		u.Video = &s
	}
	return u
}

// IsEmpty reports whether the update touches nothing.
func (u RecordingStateUpdate) IsEmpty() bool {
	return u.Screenshots == nil && u.Audio == nil && u.Video == nil
}

// Merge applies u on top of r. Unknown state values are dropped.
func (r RecordingState) Merge(u RecordingStateUpdate) RecordingState {
	if u.Screenshots != nil && u.Screenshots.Valid() {
		r.Screenshots = *u.Screenshots
	}
	if u.Audio != nil && u.Audio.Valid() {
		r.Audio = *u.Audio
	}
	if u.Video != nil && u.Video.Valid() {
		r.Video = *u.Video
	}
	return r
}
