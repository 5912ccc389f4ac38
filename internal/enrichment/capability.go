// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"fmt"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

const (
	MinAudioSeconds = 10
	MinVideoSeconds = 60
	MinScreenshots  = 5
)

// Capability reports which modalities a session has enough data for.
type Capability struct {
	Audio       bool        `json:"audio"`
	Video       bool        `json:"video"`
	VideoSource VideoSource `json:"videoSource,omitempty"`
	// Reasons explains every false flag.
	Reasons []string `json:"reasons,omitempty"`
}

// CanEnrich inspects rec without side effects.
func CanEnrich(rec *model.SessionRecord) Capability {
	var c Capability
	if rec == nil {
		c.Reasons = []string{"audio: no session data", "video: no session data"}
		return c
	}

	audio := rec.AudioDuration()
	switch {
	case len(rec.AudioSegments) == 0:
		c.Reasons = append(c.Reasons, "audio: no audio segments recorded")
	case audio < MinAudioSeconds:
		c.Reasons = append(c.Reasons, fmt.Sprintf("audio: %.1fs of audio is below the %ds minimum", audio, MinAudioSeconds))
	default:
		c.Audio = true
	}

	video := rec.VideoDuration()
	switch {
	case video >= MinVideoSeconds:
		c.Video, c.VideoSource = true, VideoSourceRecording
	case len(rec.Screenshots) >= MinScreenshots:
		c.Video, c.VideoSource = true, VideoSourceScreenshots
	case video > 0:
		c.Reasons = append(c.Reasons, fmt.Sprintf(
			"video: %.1fs recording is below the %ds minimum and only %d screenshots (need %d)",
			video, MinVideoSeconds, len(rec.Screenshots), MinScreenshots))
	default:
		c.Reasons = append(c.Reasons, fmt.Sprintf(
			"video: no recording and only %d screenshots (need %d)", len(rec.Screenshots), MinScreenshots))
	}
	return c
}
