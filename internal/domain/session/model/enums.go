// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Modality is one of the three independent recording types.
type Modality string

const (
	ModalityScreenshots Modality = "screenshots"
	ModalityAudio       Modality = "audio"
	ModalityVideo       Modality = "video"
)

// Modalities lists every modality in the order services are driven.
func Modalities() []Modality {
	return []Modality{ModalityScreenshots, ModalityAudio, ModalityVideo}
}

// RecordingServiceState is the per-modality service status tracked by the session machine.
type RecordingServiceState string

const (
	ServiceIdle         RecordingServiceState = "idle"
	ServiceInitializing RecordingServiceState = "initializing"
	ServiceActive       RecordingServiceState = "active"
	ServicePaused       RecordingServiceState = "paused"
	ServiceStopping     RecordingServiceState = "stopping"
	ServiceStopped      RecordingServiceState = "stopped"
	ServiceError        RecordingServiceState = "error"
)

// Valid reports whether s is a known service state.
func (s RecordingServiceState) Valid() bool {
	switch s {
	case ServiceIdle, ServiceInitializing, ServiceActive, ServicePaused,
		ServiceStopping, ServiceStopped, ServiceError:
		return true
	}
	return false
}

type AudioSourceType string

const (
	AudioSourceMicrophone AudioSourceType = "microphone"
	AudioSourceSystem     AudioSourceType = "system-audio"
	AudioSourceBoth       AudioSourceType = "both"
)

// UsesMicrophone reports whether the source captures a microphone input.
func (t AudioSourceType) UsesMicrophone() bool {
	return t == AudioSourceMicrophone || t == AudioSourceBoth || t == ""
}

// UsesSystemAudio reports whether the source captures system output.
func (t AudioSourceType) UsesSystemAudio() bool {
	return t == AudioSourceSystem || t == AudioSourceBoth
}

type VideoSourceType string

const (
	VideoSourceScreen          VideoSourceType = "screen"
	VideoSourceWindow          VideoSourceType = "window"
	VideoSourceWebcam          VideoSourceType = "webcam"
	VideoSourceScreenAndWebcam VideoSourceType = "display-with-webcam"
)

type VideoQuality string

const (
	QualityLow    VideoQuality = "low"
	QualityMedium VideoQuality = "medium"
	QualityHigh   VideoQuality = "high"
	QualityUltra  VideoQuality = "ultra"
)

// EnrichmentStatus is the enrichment status stored on a session record.
type EnrichmentStatus string

const (
	EnrichmentIdle       EnrichmentStatus = "idle"
	EnrichmentInProgress EnrichmentStatus = "in-progress"
	EnrichmentCompleted  EnrichmentStatus = "completed"
	EnrichmentFailed     EnrichmentStatus = "failed"
)

// StageStatus is the status of a single enrichment stage.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// Stage names an enrichment pipeline step.
type Stage string

const (
	StageValidate   Stage = "validating"
	StageEstimate   Stage = "estimating"
	StageLock       Stage = "locking"
	StageCheckpoint Stage = "checkpointing"
	StageAudio      Stage = "audio"
	StageVideo      Stage = "video"
	StageSummary    Stage = "summary"
	StageAggregate  Stage = "aggregating"
	StageComplete   Stage = "complete"
)
