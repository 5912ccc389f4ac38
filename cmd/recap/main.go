// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command recap operates the session enrichment backend: it prices and
// inspects enrichment runs, cancels them, sweeps dead checkpoints and serves
// the ops HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/recap/internal/config"
	rlog "github.com/ManuGH/recap/internal/log"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML)")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		_, _ = fmt.Fprintf(stdout, "%s (commit: %s, built: %s)\n", version, commit, buildDate)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}

	rlog.Configure(rlog.Config{Level: "info", Service: "recap", Version: version, Output: stderr})

	switch rest[0] {
	case "config":
		return runConfigCLI(*configPath, rest[1:], stdout, stderr)
	case "db":
		return runDBCLI(*configPath, rest[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	}

	cfg, err := config.NewLoader(*configPath, version).Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	rlog.Configure(rlog.Config{Level: cfg.Log.Level, Service: cfg.Log.Service, Version: version, Output: stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, ok := commands[rest[0]]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n\n", rest[0])
		printUsage(stderr)
		return 2
	}
	return cmd(ctx, cfg, *configPath, rest[1:], stdout, stderr)
}

type command func(ctx context.Context, cfg config.AppConfig, configPath string, args []string, stdout, stderr io.Writer) int

var commands = map[string]command{
	"capability": runCapability,
	"estimate":   runEstimate,
	"checkpoint": runCheckpoint,
	"cancel":     runCancel,
	"sweep":      runSweep,
	"serve":      runServe,
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  recap [-config FILE] <command> [flags]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  capability SESSION_ID            Show which modalities can be enriched")
	_, _ = fmt.Fprintln(w, "  estimate [flags] SESSION_ID      Price an enrichment run")
	_, _ = fmt.Fprintln(w, "  checkpoint SESSION_ID            Show the enrichment checkpoint")
	_, _ = fmt.Fprintln(w, "  cancel SESSION_ID                Release the lock and stop resumption")
	_, _ = fmt.Fprintln(w, "  sweep [-watch]                   Delete dead checkpoints")
	_, _ = fmt.Fprintln(w, "  serve                            Run the ops HTTP server and sweeper")
	_, _ = fmt.Fprintln(w, "  config validate|dump             Check or print the effective configuration")
	_, _ = fmt.Fprintln(w, "  db verify [-mode quick|full]     Check enrichment database integrity")
}
