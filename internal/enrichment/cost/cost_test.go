// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/recap/internal/config"
)

func TestEstimate_DefaultRates(t *testing.T) {
	e := NewEstimator(config.DefaultRates())

	// 10 minutes of audio, 30 minutes of video sampled every 10s.
	frames := e.FramesForDuration(1800)
	assert.Equal(t, 180, frames)

	est := e.Estimate(Workload{AudioSeconds: 600, Frames: frames, Summary: true}, 10)
	assert.InDelta(t, 0.26, est.Audio, 1e-9)
	assert.InDelta(t, 0.45, est.Video, 1e-9)
	// 1500 + 10*200 + 180*40 tokens
	assert.Equal(t, 10700, est.SummaryTokens)
	assert.InDelta(t, 0.1605, est.Summary, 1e-9)
	assert.InDelta(t, 0.8705, est.Total, 1e-9)
	assert.False(t, est.ExceedsThreshold)
}

func TestEstimate_Threshold(t *testing.T) {
	e := NewEstimator(config.DefaultRates())
	w := Workload{AudioSeconds: 600, Summary: true}

	assert.True(t, e.Estimate(w, 0.1).ExceedsThreshold)
	est := e.Estimate(w, 10)
	assert.False(t, est.ExceedsThreshold)
	assert.False(t, e.Estimate(w, est.Total).ExceedsThreshold, "equal to the ceiling is allowed")
}

func TestEstimate_SkippedStagesCostNothing(t *testing.T) {
	e := NewEstimator(config.DefaultRates())
	est := e.Estimate(Workload{}, 10)
	assert.Zero(t, est.Total)
	assert.Zero(t, est.SummaryTokens)
}

func TestEstimate_IsDeterministic(t *testing.T) {
	e := NewEstimator(config.DefaultRates())
	w := Workload{AudioSeconds: 123.4, Frames: 17, Summary: true}
	assert.Equal(t, e.Estimate(w, 1), e.Estimate(w, 1))
}

func TestFramesForDuration(t *testing.T) {
	e := NewEstimator(config.RatesConfig{})
	assert.Equal(t, 0, e.FramesForDuration(0))
	assert.Equal(t, 1, e.FramesForDuration(1))
	assert.Equal(t, 7, e.FramesForDuration(61))
}
