// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/recap/internal/config"
	rlog "github.com/ManuGH/recap/internal/log"
	"github.com/ManuGH/recap/internal/ops"
	"github.com/ManuGH/recap/internal/telemetry"
)

func runSweep(ctx context.Context, cfg config.AppConfig, _ string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	watch := fs.Bool("watch", false, "keep sweeping on the configured interval until interrupted")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close() }()

	sw := rt.sweeper()
	if *watch {
		sw.Run(ctx)
		return 0
	}
	n, err := sw.SweepOnce(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "removed %d checkpoints\n", n)
	return 0
}

// runServe runs the ops server and the checkpoint sweeper until interrupted.
// The config file is watched; log level changes apply without a restart.
func runServe(ctx context.Context, cfg config.AppConfig, configPath string, args []string, _, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", cfg.Metrics.Addr, "ops listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := rlog.WithComponent("serve")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		ExporterType:   cfg.Telemetry.ExporterType,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: telemetry: %v\n", err)
		return 1
	}
	defer func() { _ = tp.Shutdown(context.WithoutCancel(ctx)) }()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close() }()

	srv := ops.New(ops.Config{
		Addr:         *addr,
		ServiceName:  cfg.Telemetry.ServiceName,
		APIRateLimit: cfg.Metrics.APIRateLimit,
	}, ops.Deps{
		Enrichment: rt.orch,
		Sessions:   rt.sessions,
		Ready:      rt.ready,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error {
		rt.sweeper().Run(gctx)
		return nil
	})
	if configPath != "" {
		holder := config.NewHolder(cfg, config.NewLoader(configPath, version), configPath)
		holder.OnReload(func(next config.AppConfig) {
			rlog.Configure(rlog.Config{Level: next.Log.Level, Service: next.Log.Service, Version: version, Output: stderr})
			logger.Info().Str("level", next.Log.Level).Msg("configuration reloaded")
		})
		g.Go(func() error { return holder.Watch(gctx) })
	}

	logger.Info().Str("addr", *addr).Msg("recap ops server starting")
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("serve stopped with error")
		return 1
	}
	return 0
}
