package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/spotdash/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Navigator:  shared.Browser{},
		Logger:     logger,
	})

	err := newApp(runner).Run(ctx, os.Args)
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close storage", "error", cerr)
	}

	switch {
	case err == nil:
	case errors.Is(err, shared.ErrUnauthenticated):
		logger.Error("not logged in, run 'spotdash auth login' or 'spotdash auth guest'")
		os.Exit(1)
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("not implemented")
		os.Exit(0)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
