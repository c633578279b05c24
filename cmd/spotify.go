package main

import (
	"context"

	"github.com/desertthunder/spotdash/internal/formatter"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

type pageFetcher[T any] func(ctx context.Context, limit, offset int) (*models.Page[T], error)

// collect fetches one page, or every remaining page when --all is set.
func collect[T any](ctx context.Context, cmd *cli.Command, fetch pageFetcher[T]) ([]T, error) {
	limit, offset := cmd.Int("limit"), cmd.Int("offset")

	var items []T
	for {
		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if !cmd.Bool("all") || !page.HasNext() || len(page.Items) == 0 {
			return items, nil
		}
		offset += len(page.Items)
	}
}

// requireSession opens the runner and fails fast when no valid token is stored.
func (r *Runner) requireSession(ctx context.Context) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if !r.session.HasValidToken() {
		return shared.ErrUnauthenticated
	}
	return nil
}

// Me loads the signed in user's profile into the session and prints it.
//
// Guest sessions have no user profile, so the synthesized guest identity is printed instead.
func (r *Runner) Me(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if !r.session.Snapshot().IsGuestMode {
		if err := r.controller.LoadIdentity(ctx); err != nil {
			return err
		}
	}

	identity := r.session.Snapshot().Identity
	if cmd.Bool("json") {
		return formatter.WriteJSON(r.output, identity)
	}
	return formatter.WriteIdentity(r.output, identity)
}

// Playlists lists the current user's playlists, or another user's with --user.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	fetch := r.spotify.MyPlaylists
	if user := cmd.String("user"); user != "" {
		fetch = func(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
			return r.spotify.UserPlaylists(ctx, user, limit, offset)
		}
	}

	r.logger.Debug("listing playlists", "user", cmd.String("user"), "limit", cmd.Int("limit"), "all", cmd.Bool("all"))
	playlists, err := collect(ctx, cmd, fetch)
	if err != nil {
		return err
	}
	return formatter.WritePlaylists(r.output, playlists, format)
}

// Albums lists the user's saved albums.
func (r *Runner) Albums(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	saved, err := collect(ctx, cmd, r.spotify.SavedAlbums)
	if err != nil {
		return err
	}

	albums := make([]models.Album, 0, len(saved))
	for _, s := range saved {
		albums = append(albums, s.Album)
	}
	return formatter.WriteAlbums(r.output, albums, format)
}

// Releases lists new album releases. Guest sessions can use it.
func (r *Runner) Releases(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	albums, err := collect(ctx, cmd, r.spotify.NewReleases)
	if err != nil {
		return err
	}
	return formatter.WriteAlbums(r.output, albums, format)
}
