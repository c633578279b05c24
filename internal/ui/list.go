package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotdash/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = albumItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount())
	if i.playlist.Owner.DisplayName != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Owner.DisplayName)
	}
	return desc
}

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Name }
func (i albumItem) Title() string       { return i.album.Name }
func (i albumItem) Description() string {
	desc := strings.Join(i.album.ArtistNames(), ", ")
	if i.album.ReleaseDate != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.album.ReleaseDate)
	}
	return desc
}
