// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/recap/internal/config"
	"github.com/ManuGH/recap/internal/persistence/sqlite"
)

func runDBCLI(configPath string, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printDBUsage(stdout)
		return 0
	}

	switch args[0] {
	case "verify":
		return runDBVerify(configPath, args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printDBUsage(stderr)
		return 2
	}
}

func printDBUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  recap [-config FILE] db verify [-path PATH] [-mode quick|full]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Flags:")
	_, _ = fmt.Fprintln(w, "  -path string  SQLite database file (defaults to enrichment.sqlitePath)")
	_, _ = fmt.Fprintln(w, "  -mode string  Verification mode: quick (default) or full")
}

func runDBVerify(configPath string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("db verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("path", "", "SQLite database file")
	mode := fs.String("mode", "quick", "verification mode: quick or full")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	m := sqlite.CheckMode(strings.ToLower(strings.TrimSpace(*mode)))
	if m != sqlite.CheckQuick && m != sqlite.CheckFull {
		_, _ = fmt.Fprintf(stderr, "Error: invalid mode %q. Use 'quick' or 'full'.\n", *mode)
		return 2
	}

	target := *path
	if target == "" {
		cfg, err := config.NewLoader(configPath, version).Load()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Configuration error:\n  %v\n", err)
			return 1
		}
		target = cfg.Enrichment.SQLitePath
	}
	if _, err := os.Stat(target); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	problems, err := sqlite.VerifyIntegrity(context.Background(), target, m)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(problems) > 0 {
		_, _ = fmt.Fprintf(stderr, "%s: %d problems found\n", target, len(problems))
		for _, p := range problems {
			_, _ = fmt.Fprintf(stderr, "  %s\n", p)
		}
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "%s: ok (%s)\n", target, m)
	return 0
}
