// Spotify Web API wrappers based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/spotdash/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

func pageQuery(limit, offset int) string {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf("limit=%d&offset=%d", limit, offset)
}

// Me retrieves the current user's profile.
func (c *SpotifyClient) Me(ctx context.Context) (*models.Identity, error) {
	var identity models.Identity
	if err := c.Request(ctx, http.MethodGet, "/v1/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// MyPlaylists retrieves the current user's playlists with pagination.
func (c *SpotifyClient) MyPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	var page models.Page[models.Playlist]
	if err := c.Request(ctx, http.MethodGet, "/v1/me/playlists?"+pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UserPlaylists retrieves another user's public playlists with pagination.
func (c *SpotifyClient) UserPlaylists(ctx context.Context, userID string, limit, offset int) (*models.Page[models.Playlist], error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	var page models.Page[models.Playlist]
	endpoint := fmt.Sprintf("/v1/users/%s/playlists?%s", url.PathEscape(userID), pageQuery(limit, offset))
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Playlist retrieves a single playlist by ID.
func (c *SpotifyClient) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("playlist ID is required")
	}

	var playlist models.Playlist
	endpoint := fmt.Sprintf("/v1/playlists/%s", url.PathEscape(playlistID))
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// SavedAlbums retrieves albums saved in the user's library with pagination.
func (c *SpotifyClient) SavedAlbums(ctx context.Context, limit, offset int) (*models.Page[models.SavedAlbum], error) {
	var page models.Page[models.SavedAlbum]
	if err := c.Request(ctx, http.MethodGet, "/v1/me/albums?"+pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// NewReleases retrieves featured new album releases. Works with guest tokens.
func (c *SpotifyClient) NewReleases(ctx context.Context, limit, offset int) (*models.Page[models.Album], error) {
	var response models.NewReleases
	if err := c.Request(ctx, http.MethodGet, "/v1/browse/new-releases?"+pageQuery(limit, offset), nil, &response); err != nil {
		return nil, err
	}
	return &response.Albums, nil
}
