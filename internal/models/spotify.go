// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package models

// Page is the offset based pagination envelope used by list endpoints.
type Page[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// HasNext reports whether another page is available.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type trackCount struct {
	Total int `json:"total"`
}

// Playlist represents a simplified playlist object (used in lists).
type Playlist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Owner       Owner      `json:"owner"`
	Public      bool       `json:"public"`
	Tracks      trackCount `json:"tracks"`
	Images      []Image    `json:"images"`
	URI         string     `json:"uri"`
}

// TrackCount returns the number of tracks in the playlist.
func (p Playlist) TrackCount() int {
	return p.Tracks.Total
}

// Artist represents a simplified artist object.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// ArtistNames returns the album's artist names in credit order.
func (a Album) ArtistNames() []string {
	names := make([]string, 0, len(a.Artists))
	for _, artist := range a.Artists {
		names = append(names, artist.Name)
	}
	return names
}

// SavedAlbum represents an album saved in the user's library.
type SavedAlbum struct {
	AddedAt string `json:"added_at"`
	Album   Album  `json:"album"`
}

// NewReleases is the envelope returned by /v1/browse/new-releases.
type NewReleases struct {
	Albums Page[Album] `json:"albums"`
}
