package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotdash/internal/auth"
	"github.com/desertthunder/spotdash/internal/formatter"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/server"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// startCallbackListener serves the redirect URI's path on the configured loopback address.
func (r *Runner) startCallbackListener() (*server.Listener, *server.CallbackHandler, error) {
	handler, err := server.NewCallbackHandler(r.controller, r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return nil, nil, err
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewBasicRouter()
	router.Use(server.Recover(logger), server.Logging(logger))
	router.Handler(handler)

	ln, err := server.Listen(r.config.Server.Addr(), router, logger)
	if err != nil {
		return nil, nil, err
	}
	return ln, handler, nil
}

func (r *Runner) stopCallbackListener(ln *server.Listener) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ln.Shutdown(ctx); err != nil {
		r.logger.Warn("callback listener did not shut down cleanly", "error", err)
	}
}

// awaitCallback blocks until the handler reports, the callback timeout passes, or ctx is cancelled.
func (r *Runner) awaitCallback(ctx context.Context, handler *server.CallbackHandler) (server.CallbackResult, error) {
	timer := time.NewTimer(r.config.Auth.CallbackTimeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		return result, nil
	case <-timer.C:
		return server.CallbackResult{}, fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, r.config.Auth.CallbackTimeout)
	case <-ctx.Done():
		return server.CallbackResult{}, ctx.Err()
	}
}

func (r *Runner) writeSignedIn() error {
	snap := r.session.Snapshot()
	minutes := snap.MinutesUntilExpirationAt(r.session.Now())

	if snap.IsGuestMode {
		return r.writePlain("✓ Guest session started (token expires in %d min)\n", minutes)
	}

	name := "unknown user"
	if snap.Identity != nil {
		name = snap.Identity.Name()
	}
	return r.writePlain("✓ Logged in as %s (token expires in %d min)\n", name, minutes)
}

// AuthLogin runs the authorization code flow: it starts the loopback listener, opens the
// authorization URL and waits for the provider to redirect back.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("no-browser") {
		r.navigator = nil
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if r.session.HasValidToken() {
		r.writePlain("Already signed in. Run 'spotdash auth logout' first to switch accounts.\n")
		return r.writeSignedIn()
	}

	ln, handler, err := r.startCallbackListener()
	if err != nil {
		return err
	}
	defer r.stopCallbackListener(ln)

	authURL, err := r.controller.InitiateLogin(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Open this URL to authorize spotdash:\n\n%s\n\n", authURL)
	r.writePlain("Waiting for the redirect to %s ...\n", r.config.Credentials.Spotify.RedirectURI)

	result, err := r.awaitCallback(ctx, handler)
	if err != nil {
		if errors.Is(err, shared.ErrTimeout) {
			r.writePlainln("The login is still pending. Finish it with 'spotdash auth callback <redirected-url>'.")
		}
		return err
	}
	if result.Err != nil {
		return result.Err
	}

	return r.writeSignedIn()
}

// callbackParams accepts a full redirect URL or a bare query string.
func callbackParams(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: callback URL", shared.ErrMissingArgument)
	}

	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		return u.Query(), nil
	}

	params, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return params, nil
}

// AuthCallback completes a pending login in a separate process using the redirected URL.
func (r *Runner) AuthCallback(ctx context.Context, cmd *cli.Command) error {
	params, err := callbackParams(cmd.StringArg("url"))
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if _, err := r.controller.HandleCallback(ctx, params); err != nil {
		return err
	}
	return r.writeSignedIn()
}

// AuthGuest starts a guest session with the client credentials grant.
func (r *Runner) AuthGuest(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	if _, err := r.controller.LoginAsGuest(ctx); err != nil {
		if errors.Is(err, shared.ErrAlreadyAuthenticated) {
			r.writePlain("Already signed in. Run 'spotdash auth logout' first to switch accounts.\n")
			return r.writeSignedIn()
		}
		return err
	}
	return r.writeSignedIn()
}

// AuthLogout clears the session and every durable key.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	r.controller.Logout()
	return r.writePlain("✓ Logged out\n")
}

// statusReport is the JSON shape of `auth status --json`.
type statusReport struct {
	formatter.Status
	History []*formatter.Event `json:"history,omitempty"`
}

// AuthStatus prints the session, the flow state and optionally the login history.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	snap := r.session.Snapshot()
	now := r.session.Now()
	state := r.controller.State()

	status := formatter.Status{
		State:            state.String(),
		Authenticated:    snap.HasValidTokenAt(now),
		Guest:            snap.IsGuestMode,
		MinutesRemaining: snap.MinutesUntilExpirationAt(now),
		PendingLogin:     state == auth.AwaitingCallback,
		LastError:        snap.LastError,
	}
	if snap.Identity != nil {
		status.DisplayName = snap.Identity.Name()
		status.UserID = snap.Identity.ID
	}
	if status.Authenticated {
		expires := snap.TokenExpirationTime
		status.ExpiresAt = &expires
	}

	report := statusReport{Status: status}
	var history []*models.LoginEvent
	if r.events != nil {
		latest, err := r.events.Latest()
		if err != nil {
			r.logger.Warn("failed to load login history", "error", err)
		}
		report.LastEvent = formatter.NewEvent(latest)

		if n := cmd.Int("history"); n > 0 {
			if history, err = r.events.List(n); err != nil {
				return err
			}
			for _, e := range history {
				report.History = append(report.History, formatter.NewEvent(e))
			}
		}
	}

	if cmd.Bool("json") {
		return formatter.WriteJSON(r.output, report)
	}

	if err := formatter.WriteStatus(r.output, report.Status); err != nil {
		return err
	}
	if len(history) > 0 {
		r.writePlainln("Recent logins:")
		return formatter.WriteEvents(r.output, history, formatter.FormatText)
	}
	return nil
}
