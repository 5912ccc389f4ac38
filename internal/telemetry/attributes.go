// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing.
const (
	SessionIDKey    = "session.id"
	CheckpointIDKey = "enrichment.checkpoint_id"
	StageKey        = "enrichment.stage"
	ModalityKey     = "enrichment.modality"
	CostKey         = "enrichment.cost"
	MaxCostKey      = "enrichment.max_cost"
	AttemptKey      = "enrichment.attempt"
	ResumedKey      = "enrichment.resumed"
	SuccessKey      = "enrichment.success"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// EnrichmentAttributes creates the attributes of a run span.
func EnrichmentAttributes(sessionID string, maxCost float64, resumed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SessionIDKey, sessionID),
		attribute.Float64(MaxCostKey, maxCost),
		attribute.Bool(ResumedKey, resumed),
	}
}

// StageAttributes creates the attributes of a stage span.
func StageAttributes(stage string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(StageKey, stage)}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

// RecordError marks span as failed. A nil error is ignored.
func RecordError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(ErrorAttributes(errorType)...)
	span.SetStatus(codes.Error, err.Error())
}
