package ports

import (
	"context"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

// CaptureCallbacks receives captured artifacts while a session records.
// Either field may be nil.
type CaptureCallbacks struct {
	OnScreenshot   func(model.Screenshot)
	OnAudioSegment func(model.AudioSegment)
}

// SessionHandle identifies the session a recording service captures for.
type SessionHandle struct {
	SessionID string
	Config    model.SessionConfig
	Session   *model.SessionRecord
	Callbacks *CaptureCallbacks
}

// RecordingService controls one capture modality.
// Implementations may treat Pause and Resume as no-ops; the video recorder does.
type RecordingService interface {
	Start(ctx context.Context, handle SessionHandle) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	// IsAlive reports whether the service is still capturing.
	IsAlive() bool
}

// Services bundles the three recording services.
type Services struct {
	Screenshots RecordingService
	Audio       RecordingService
	Video       RecordingService
}

// For returns the service for modality m, or nil.
func (s Services) For(m model.Modality) RecordingService {
	switch m {
	case model.ModalityScreenshots:
		return s.Screenshots
	case model.ModalityAudio:
		return s.Audio
	case model.ModalityVideo:
		return s.Video
	}
	return nil
}
