// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ManuGH/recap/internal/config"
	"github.com/ManuGH/recap/internal/domain/session/model"
	"github.com/ManuGH/recap/internal/enrichment"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sessionArg parses flags and returns the single session id argument.
func sessionArg(fs *flag.FlagSet, args []string, stderr io.Writer) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: recap %s SESSION_ID\n", fs.Name())
		return "", false
	}
	id := fs.Arg(0)
	if !model.IsSafeSessionID(id) {
		_, _ = fmt.Fprintf(stderr, "Error: invalid session id %q\n", id)
		return "", false
	}
	return id, true
}

// withSession opens the runtime, loads the session and hands both to fn.
func withSession(ctx context.Context, cfg config.AppConfig, id string, stderr io.Writer, fn func(*appRuntime, *model.SessionRecord) int) int {
	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close() }()

	rec, err := rt.sessions.Get(ctx, id)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return fn(rt, rec)
}

func runCapability(ctx context.Context, cfg config.AppConfig, _ string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("capability", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id, ok := sessionArg(fs, args, stderr)
	if !ok {
		return 2
	}
	return withSession(ctx, cfg, id, stderr, func(rt *appRuntime, rec *model.SessionRecord) int {
		if err := writeJSON(stdout, rt.orch.CanEnrich(rec)); err != nil {
			return 1
		}
		return 0
	})
}

func runEstimate(ctx context.Context, cfg config.AppConfig, _ string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := enrichment.DefaultOptions()
	fs.BoolVar(&opts.IncludeAudio, "audio", true, "include audio review")
	fs.BoolVar(&opts.IncludeVideo, "video", true, "include video chaptering")
	fs.BoolVar(&opts.IncludeSummary, "summary", true, "include summary generation")
	fs.BoolVar(&opts.ForceRegenerate, "force", false, "price stages whose output already exists")
	fs.Float64Var(&opts.MaxCost, "max-cost", 0, "cost ceiling (0 uses the configured default)")
	id, ok := sessionArg(fs, args, stderr)
	if !ok {
		return 2
	}
	return withSession(ctx, cfg, id, stderr, func(rt *appRuntime, rec *model.SessionRecord) int {
		est, err := rt.orch.EstimateCost(rec, opts)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if err := writeJSON(stdout, est); err != nil {
			return 1
		}
		if est.ExceedsThreshold {
			return 3
		}
		return 0
	})
}

func runCheckpoint(ctx context.Context, cfg config.AppConfig, _ string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("checkpoint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id, ok := sessionArg(fs, args, stderr)
	if !ok {
		return 2
	}
	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close() }()

	cp, err := rt.orch.Checkpoint(ctx, id)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := writeJSON(stdout, cp); err != nil {
		return 1
	}
	return 0
}

func runCancel(ctx context.Context, cfg config.AppConfig, _ string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id, ok := sessionArg(fs, args, stderr)
	if !ok {
		return 2
	}
	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close() }()

	if err := rt.orch.Cancel(ctx, id); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "cancelled enrichment for %s\n", id)
	return 0
}
