package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericfisherdev/hiddenote/internal/adapter/driving/cli"
	"github.com/ericfisherdev/hiddenote/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}

	// 2. Diagnostics go to stderr so stdout stays clean for note content.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	slog.Debug("config loaded",
		"db_path", cfg.DBPath,
		"kdf_iterations", cfg.KDFIterations,
		"cipher", cfg.Cipher,
		"autosave_delay", cfg.AutoSaveDelay,
	)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	// The first signal cancels ctx; commands flush what they have and return.
	// Unregistering then lets a second Ctrl-C terminate immediately.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)

	// 4. Dispatch. Command errors are already reported by the formatter;
	// anything else (unknown flag, wrong arg count) comes from cobra.
	root := cli.NewRootCommand(cfg, logger)
	err = root.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	return exitErr.Code
}
