// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cost prices enrichment work before it runs.
package cost

import (
	"math"

	"github.com/ManuGH/recap/internal/config"
)

// Workload is the amount of work a run would do. Zero values mean the
// stage is skipped.
type Workload struct {
	AudioSeconds float64
	Frames       int
	Summary      bool
}

// Estimate is a priced workload.
type Estimate struct {
	Audio            float64 `json:"audio"`
	Video            float64 `json:"video"`
	Summary          float64 `json:"summary"`
	Total            float64 `json:"total"`
	SummaryTokens    int     `json:"summaryTokens,omitempty"`
	ExceedsThreshold bool    `json:"exceedsThreshold"`
}

// Estimator applies fixed per-unit rates. It holds no state besides the rates.
type Estimator struct {
	rates config.RatesConfig
}

func NewEstimator(rates config.RatesConfig) Estimator {
	if rates.FrameIntervalSeconds <= 0 {
		rates.FrameIntervalSeconds = config.DefaultRates().FrameIntervalSeconds
	}
	return Estimator{rates: rates}
}

// FramesForDuration returns how many frames are sampled from a recording of
// the given length, one per frame interval, rounding up.
func (e Estimator) FramesForDuration(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds / e.rates.FrameIntervalSeconds))
}

// Estimate prices w and compares the total against maxCost.
func (e Estimator) Estimate(w Workload, maxCost float64) Estimate {
	var est Estimate
	audioMinutes := math.Max(w.AudioSeconds, 0) / 60
	frames := max(w.Frames, 0)

	est.Audio = round(audioMinutes * e.rates.AudioPerMinute)
	est.Video = round(float64(frames) * e.rates.VideoPerFrame)
	if w.Summary {
		est.SummaryTokens = e.rates.SummaryBaseTokens +
			int(math.Ceil(audioMinutes*float64(e.rates.TokensPerAudioMinute))) +
			frames*e.rates.TokensPerFrame
		est.Summary = round(float64(est.SummaryTokens) * e.rates.SummaryPerToken)
	}
	est.Total = round(est.Audio + est.Video + est.Summary)
	est.ExceedsThreshold = est.Total > maxCost
	return est
}

// round trims float noise to six decimals so equal inputs print equally.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
