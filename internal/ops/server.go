// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ops serves the operator HTTP surface: Prometheus metrics, health
// probes and a small read-mostly API over enrichment state.
package ops

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/enrichment"
	"github.com/ManuGH/recap/internal/enrichment/cost"
	"github.com/ManuGH/recap/internal/log"
)

// Enrichment is the orchestrator surface the API exposes.
type Enrichment interface {
	CanEnrich(rec *model.SessionRecord) enrichment.Capability
	EstimateCost(rec *model.SessionRecord, opts enrichment.Options) (cost.Estimate, error)
	Checkpoint(ctx context.Context, sessionID string) (*model.EnrichmentCheckpoint, error)
	Cancel(ctx context.Context, sessionID string) error
}

// SessionReader loads session records.
type SessionReader interface {
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
}

type Config struct {
	Addr            string
	ServiceName     string
	ShutdownTimeout time.Duration

	// APIRateLimit is requests per minute per client on /api; zero disables it.
	APIRateLimit int
}

type Deps struct {
	Enrichment Enrichment
	Sessions   SessionReader
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(context.Context) error
}

type Server struct {
	cfg    Config
	deps   Deps
	router chi.Router
	logger zerolog.Logger
}

func New(cfg Config, deps Deps) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "recap"
	}
	s := &Server{cfg: cfg, deps: deps, logger: log.WithComponent("ops")}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(correlation)
	r.Use(tracing(s.cfg.ServiceName))
	r.Use(accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions/{id}", func(r chi.Router) {
		if s.cfg.APIRateLimit > 0 {
			r.Use(rateLimit(s.cfg.APIRateLimit))
		}
		r.Get("/capability", s.handleCapability)
		r.Get("/estimate", s.handleEstimate)
		r.Get("/checkpoint", s.handleCheckpoint)
		r.Post("/enrichment/cancel", s.handleCancel)
	})
	return r
}

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("ops server listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("ops server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ops server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops server: %w", err)
	}
	s.logger.Info().Msg("ops server stopped")
	return nil
}
