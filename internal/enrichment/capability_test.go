// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/recap/internal/domain/session/model"
)

func TestCanEnrich(t *testing.T) {
	shots := func(n int) []model.Screenshot { return make([]model.Screenshot, n) }
	audio := func(d float64) []model.AudioSegment { return []model.AudioSegment{{ID: "a", Duration: d}} }

	tests := []struct {
		name       string
		rec        *model.SessionRecord
		wantAudio  bool
		wantVideo  bool
		wantSource VideoSource
		reasons    int
	}{
		{"nil record", nil, false, false, VideoSourceNone, 2},
		{"audio at threshold", &model.SessionRecord{AudioSegments: audio(10), Screenshots: shots(5)}, true, true, VideoSourceScreenshots, 0},
		{"audio below threshold", &model.SessionRecord{AudioSegments: audio(9.9)}, false, false, VideoSourceNone, 2},
		{"long recording", &model.SessionRecord{Video: &model.Video{FullVideoAttachmentID: "v", Duration: 60}}, false, true, VideoSourceRecording, 1},
		{"short recording falls back to screenshots", &model.SessionRecord{
			Video: &model.Video{FullVideoAttachmentID: "v", Duration: 30}, Screenshots: shots(6),
		}, false, true, VideoSourceScreenshots, 1},
		{"short recording and few screenshots", &model.SessionRecord{
			Video: &model.Video{FullVideoAttachmentID: "v", Duration: 30}, Screenshots: shots(4),
		}, false, false, VideoSourceNone, 2},
		{"video without attachment is unusable", &model.SessionRecord{Video: &model.Video{Duration: 600}}, false, false, VideoSourceNone, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CanEnrich(tt.rec)
			assert.Equal(t, tt.wantAudio, c.Audio)
			assert.Equal(t, tt.wantVideo, c.Video)
			assert.Equal(t, tt.wantSource, c.VideoSource)
			assert.Len(t, c.Reasons, tt.reasons)
		})
	}
}
