// Package services implements the authenticated client for the Spotify Web API.
//
// # Authenticated Client
//
// [SpotifyClient] attaches the session's bearer token to every request. It only reads the token
// through [TokenSource]; it never refreshes, retries or clears the session. When no valid token
// is available the request fails fast with [shared.ErrUnauthenticated] and nothing is sent.
//
// Outbound requests pass through a token bucket limiter ([rate.Limiter]) so bulk listings stay
// under the provider's rate limits.
//
// # Error Handling
//
//   - [shared.ErrUnauthenticated] : no valid token, or the provider answered 401
//   - [HTTPError] : any non-2xx response, carrying the status code and body; wraps [shared.ErrAPIRequest]
//
// # API Mappings
//
// Typed wrappers decode into the models package:
//   - /v1/me → [models.Identity]
//   - /v1/me/playlists, /v1/users/{id}/playlists → [models.Page] of [models.Playlist]
//   - /v1/me/albums → [models.Page] of [models.SavedAlbum]
//   - /v1/browse/new-releases → [models.Page] of [models.Album]
package services
