// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ops

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/domain/session/store"
	"github.com/ManuGH/recap/internal/enrichment"
	"github.com/ManuGH/recap/internal/log"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorBody{Error: code, Detail: detail})
}

// writeDomainError maps enrichment and store errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, enrichment.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, enrichment.ErrCheckpointNotFound):
		writeError(w, http.StatusNotFound, "checkpoint_not_found", err.Error())
	case errors.Is(err, enrichment.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		logger := log.WithComponentFromContext(r.Context(), "ops")
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*model.SessionRecord, bool) {
	id := chi.URLParam(r, "id")
	if !model.IsSafeSessionID(id) {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "session id must be alphanumeric, dash or underscore")
		return nil, false
	}
	rec, err := s.deps.Sessions.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return nil, false
	}
	return rec, true
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCapability(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Enrichment.CanEnrich(rec))
}

// handleEstimate accepts maxCost and the include flags audio, video and summary.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.session(w, r)
	if !ok {
		return
	}
	opts := enrichment.DefaultOptions()
	q := r.URL.Query()
	if v := q.Get("maxCost"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_max_cost", "maxCost must be a positive number")
			return
		}
		opts.MaxCost = f
	}
	for name, dst := range map[string]*bool{
		"audio":   &opts.IncludeAudio,
		"video":   &opts.IncludeVideo,
		"summary": &opts.IncludeSummary,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_flag", name+" must be a boolean")
				return
			}
			*dst = b
		}
	}
	est, err := s.deps.Enrichment.EstimateCost(rec, opts)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cp, err := s.deps.Enrichment.Checkpoint(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !model.IsSafeSessionID(id) {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "session id must be alphanumeric, dash or underscore")
		return
	}
	if err := s.deps.Enrichment.Cancel(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
