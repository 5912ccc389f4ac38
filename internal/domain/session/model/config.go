// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// SessionConfig is the immutable request to start a recording session.
type SessionConfig struct {
	Name               string      `json:"name" validate:"notblank,max=255"`
	Description        string      `json:"description,omitempty"`
	ScreenshotsEnabled bool        `json:"screenshotsEnabled"`
	Audio              AudioConfig `json:"audioConfig"`
	Video              VideoConfig `json:"videoConfig"`
}

// AudioConfig holds the audio capture parameters. Bounds apply only when Enabled.
type AudioConfig struct {
	Enabled             bool            `json:"enabled"`
	SourceType          AudioSourceType `json:"sourceType" validate:"omitempty,oneof=microphone system-audio both"`
	MicDeviceID         string          `json:"micDeviceId,omitempty"`
	SystemAudioDeviceID string          `json:"systemAudioDeviceId,omitempty"`
	MicVolume           float64         `json:"micVolume" validate:"gte=0,lte=1"`
	SystemAudioVolume   float64         `json:"systemAudioVolume" validate:"gte=0,lte=1"`
	Balance             int             `json:"balance" validate:"gte=0,lte=100"`
}

// Resolution is a capture resolution in pixels.
type Resolution struct {
	Width  int `json:"width" validate:"gte=640"`
	Height int `json:"height" validate:"gte=480"`
}

// VideoConfig holds the video capture parameters. Bounds apply only when Enabled.
type VideoConfig struct {
	Enabled        bool            `json:"enabled"`
	SourceType     VideoSourceType `json:"sourceType" validate:"omitempty,oneof=screen window webcam display-with-webcam"`
	DisplayIDs     []string        `json:"displayIds,omitempty"`
	WindowIDs      []string        `json:"windowIds,omitempty"`
	WebcamDeviceID string          `json:"webcamDeviceId,omitempty"`
	Quality        VideoQuality    `json:"quality" validate:"omitempty,oneof=low medium high ultra"`
	FPS            int             `json:"fps" validate:"gte=10,lte=60"`
	Resolution     Resolution      `json:"resolution"`
}

// EnabledModalities returns the modalities this config records, in service order.
func (c SessionConfig) EnabledModalities() []Modality {
	var out []Modality
	for _, m := range Modalities() {
		if c.Enabled(m) {
			out = append(out, m)
		}
	}
	return out
}

// Enabled reports whether modality m is switched on.
func (c SessionConfig) Enabled(m Modality) bool {
	switch m {
	case ModalityScreenshots:
		return c.ScreenshotsEnabled
	case ModalityAudio:
		return c.Audio.Enabled
	case ModalityVideo:
		return c.Video.Enabled
	}
	return false
}

// NeedsScreenRecording reports whether any enabled modality captures the screen.
func (c SessionConfig) NeedsScreenRecording() bool {
	if c.ScreenshotsEnabled {
		return true
	}
	if !c.Video.Enabled {
		return false
	}
	return c.Video.SourceType != VideoSourceWebcam
}

// NeedsMicrophone reports whether audio capture includes a microphone.
func (c SessionConfig) NeedsMicrophone() bool {
	return c.Audio.Enabled && c.Audio.SourceType.UsesMicrophone()
}

// Clone returns a deep copy.
func (c SessionConfig) Clone() SessionConfig {
	out := c
	out.Video.DisplayIDs = append([]string(nil), c.Video.DisplayIDs...)
	out.Video.WindowIDs = append([]string(nil), c.Video.WindowIDs...)
	return out
}
