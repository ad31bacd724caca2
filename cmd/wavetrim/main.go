// SPDX-License-Identifier: EPL-2.0

// Command wavetrim searches, loads, renders, trims and plays short audio
// clips from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ik5/wavetrim/internal/config"
	"github.com/ik5/wavetrim/internal/observe"
)

const usage = `usage: wavetrim [-config file] [-log-level level] <command> [flags] [args]

commands:
  search <query>               search Freesound and print preview URLs
  render <source>...           load sources in parallel and write PNG waveforms
  play <source>                play a region of a clip
  trim <source>                write a region of a clip as 16-bit WAV
  presets list                 print the presets of a preset service
  presets serve                serve a YAML preset file at /api/presets
`

var errUsage = errors.New("invalid usage")

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "wavetrim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wavetrim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("WAVETRIM_CONFIG"), "YAML configuration file")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides the configuration)")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := observe.NewLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	logger.Debug("running command", "command", cmd)

	switch cmd {
	case "search":
		return a.search(ctx, rest)
	case "render":
		return a.render(ctx, rest)
	case "play":
		return a.play(ctx, rest)
	case "trim":
		return a.trim(ctx, rest)
	case "presets":
		return a.presets(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", cmd)
		return errUsage
	}
}
