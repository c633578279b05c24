package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/spotdash/internal/formatter"
	"github.com/desertthunder/spotdash/internal/services"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet performs an authenticated GET and prints the body, pretty-printed when it is JSON.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	resp, err := r.spotify.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &services.HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	if resp.IsJSON {
		return formatter.WriteJSON(r.output, resp.JSONData)
	}
	return r.writePlain("%s\n", resp.Body)
}
