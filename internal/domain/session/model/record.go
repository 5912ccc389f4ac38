// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "time"

// SessionRecord is the persisted session entity. Records are stored as a
// single "sessions" array in key-value storage.
type SessionRecord struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
	Screenshots   []Screenshot    `json:"screenshots,omitempty"`
	AudioSegments []AudioSegment  `json:"audioSegments,omitempty"`
	Video         *Video          `json:"video,omitempty"`
	Category      string          `json:"category,omitempty"`
	SubCategory   string          `json:"subCategory,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	Summary       *Summary        `json:"summary,omitempty"`
	AudioReview   *AudioReview    `json:"audioReview,omitempty"`
	Enrichment    *EnrichmentInfo `json:"enrichmentStatus,omitempty"`
}

type Screenshot struct {
	ID           string    `json:"id"`
	AttachmentID string    `json:"attachmentId"`
	Timestamp    time.Time `json:"timestamp"`
}

type AudioSegment struct {
	ID           string    `json:"id"`
	AttachmentID string    `json:"attachmentId"`
	Timestamp    time.Time `json:"timestamp"`
	// Duration in seconds.
	Duration float64 `json:"duration"`
}

type Video struct {
	FullVideoAttachmentID string `json:"fullVideoAttachmentId"`
	// Duration in seconds; zero when unknown.
	Duration float64        `json:"duration,omitempty"`
	Chapters []VideoChapter `json:"chapters,omitempty"`
}

// VideoChapter is one chapter proposal produced by video enrichment.
type VideoChapter struct {
	ID         string   `json:"id"`
	StartTime  float64  `json:"startTime"`
	EndTime    float64  `json:"endTime"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary,omitempty"`
	KeyTopics  []string `json:"keyTopics,omitempty"`
	Confidence float64  `json:"confidence"`
}

// AudioReview is the output of audio enrichment.
type AudioReview struct {
	// AttachmentID points at the optimized audio produced during review.
	AttachmentID string    `json:"attachmentId,omitempty"`
	Transcript   string    `json:"fullTranscript"`
	Insights     []string  `json:"insights,omitempty"`
	ReviewedAt   time.Time `json:"reviewedAt"`
}

type Summary struct {
	Narrative   string    `json:"narrative"`
	Category    string    `json:"category,omitempty"`
	SubCategory string    `json:"subCategory,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// StageInfo is the persisted status of one enrichment stage.
type StageInfo struct {
	Status      StageStatus `json:"status"`
	Error       string      `json:"error,omitempty"`
	Cost        float64     `json:"cost,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// EnrichmentInfo is the enrichment status block stored on a session record.
type EnrichmentInfo struct {
	Status      EnrichmentStatus `json:"status"`
	Audio       StageInfo        `json:"audio"`
	Video       StageInfo        `json:"video"`
	Summary     StageInfo        `json:"summary"`
	TotalCost   float64          `json:"totalCost"`
	Warnings    []string         `json:"warnings,omitempty"`
	Error       string           `json:"error,omitempty"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// AudioDuration returns the summed audio segment duration in seconds.
func (s *SessionRecord) AudioDuration() float64 {
	var total float64
	for _, seg := range s.AudioSegments {
		if seg.Duration > 0 {
			total += seg.Duration
		}
	}
	return total
}

// VideoDuration returns the recording duration in seconds, or zero if there is no usable video.
func (s *SessionRecord) VideoDuration() float64 {
	if s.Video == nil || s.Video.FullVideoAttachmentID == "" {
		return 0
	}
	return s.Video.Duration
}

// Categories collects the distinct vocabulary used by a set of sessions.
type Categories struct {
	Categories    []string
	SubCategories []string
	Tags          []string
}

// CollectCategories gathers category, subcategory and tag vocabulary across records,
// skipping the session identified by excludeID. Order of first appearance is kept.
func CollectCategories(records []SessionRecord, excludeID string) Categories {
	var out Categories
	seen := map[string]bool{}
	add := func(dst *[]string, kind, v string) {
		if v == "" || seen[kind+"\x00"+v] {
			return
		}
		seen[kind+"\x00"+v] = true
		*dst = append(*dst, v)
	}
	for i := range records {
		r := &records[i]
		if r.ID == excludeID {
			continue
		}
		add(&out.Categories, "c", r.Category)
		add(&out.SubCategories, "s", r.SubCategory)
		for _, t := range r.Tags {
			add(&out.Tags, "t", t)
		}
	}
	return out
}
