package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive session view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.open(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, r.session, r.controller, r.tuiLogin(ctx), r.spotify)
	defer model.Close()

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// tuiLogin starts a login whose callback is handled in the background for the lifetime of ctx.
// Starting a new login stops the previous listener first.
//
// The view learns the outcome from the session store, so results are only logged here.
func (r *Runner) tuiLogin(ctx context.Context) ui.LoginFunc {
	var (
		mu     sync.Mutex
		cancel context.CancelFunc
		done   chan struct{}
	)

	return func(loginCtx context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if cancel != nil {
			cancel()
			<-done
		}

		ln, handler, err := r.startCallbackListener()
		if err != nil {
			return "", err
		}

		authURL, err := r.controller.InitiateLogin(loginCtx)
		if err != nil {
			r.stopCallbackListener(ln)
			return "", err
		}

		var waitCtx context.Context
		waitCtx, cancel = context.WithCancel(ctx)
		done = make(chan struct{})

		go func(done chan struct{}) {
			defer close(done)
			defer r.stopCallbackListener(ln)

			result, err := r.awaitCallback(waitCtx, handler)
			switch {
			case errors.Is(err, shared.ErrTimeout):
				r.logger.Warn("login callback timed out, run 'spotdash auth callback <url>' to finish it")
			case err != nil:
				r.logger.Debug("stopped waiting for login callback", "error", err)
			case result.Err != nil:
				r.logger.Warn("login failed", "error", result.Err)
			default:
				r.logger.Info("login completed", "state", result.State)
			}
		}(done)

		return authURL, nil
	}
}
