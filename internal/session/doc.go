// Package session holds the process wide authentication session and keeps it in sync with durable storage.
//
// A [Store] is the single source of truth for the access token, its expiry, the user identity and the
// guest flag. The authorization flow mutates it, presentation code reads [Store.Snapshot] or listens on
// [Store.Subscribe], and the API client only reads [Store.AccessToken].
//
// Durable keys:
//   - spotify_access_token : bearer token
//   - spotify_token_expiration : expiry as Unix milliseconds
//   - verifier : JSON encoded [PKCEContext] between redirect and callback
//   - is_guest : "true" while the session came from the client credentials grant
//
// Setters never fail. Storage write errors are logged and the in-memory session stays authoritative.
package session
