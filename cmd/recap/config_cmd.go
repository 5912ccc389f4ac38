// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/recap/internal/config"
)

const redacted = "***"

func runConfigCLI(configPath string, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stdout)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(configPath, args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(configPath, args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  recap [-config FILE] config validate")
	_, _ = fmt.Fprintln(w, "  recap [-config FILE] config dump [-format=yaml|json]")
}

func runConfigValidate(configPath string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if _, err := config.NewLoader(configPath, version).Load(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error:\n  %v\n", err)
		return 1
	}
	source := configPath
	if source == "" {
		source = "environment configuration"
	}
	_, _ = fmt.Fprintf(stdout, "%s is valid\n", source)
	return 0
}

// runConfigDump prints the effective configuration (defaults, file, env)
// with secrets redacted.
func runConfigDump(configPath string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.NewLoader(configPath, version).Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error:\n  %v\n", err)
		return 1
	}
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = redacted
	}

	switch strings.ToLower(strings.TrimSpace(*format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			_, _ = fmt.Fprintf(stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		if err := writeJSON(stdout, cfg); err != nil {
			_, _ = fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unsupported format: %s (use yaml or json)\n", *format)
		return 2
	}
}
