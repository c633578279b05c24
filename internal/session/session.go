package session

import (
	"time"

	"github.com/desertthunder/spotdash/internal/models"
)

const (
	KeyAccessToken     = "spotify_access_token"
	KeyTokenExpiration = "spotify_token_expiration"
	KeyVerifier        = "verifier"
	KeyIsGuest         = "is_guest"
)

// Keys lists every durable key the session owns.
var Keys = []string{KeyAccessToken, KeyTokenExpiration, KeyVerifier, KeyIsGuest}

// Session is an immutable snapshot of the authentication session.
type Session struct {
	AccessToken         string
	TokenExpirationTime time.Time
	Identity            *models.Identity
	IsGuestMode         bool
	IsLoading           bool
	LastError           string
}

// HasValidTokenAt reports whether a token exists and has not expired at now.
func (s Session) HasValidTokenAt(now time.Time) bool {
	return s.AccessToken != "" && !s.TokenExpirationTime.IsZero() && now.Before(s.TokenExpirationTime)
}

// MinutesUntilExpirationAt returns whole minutes left on the token, or 0 when it is not valid.
func (s Session) MinutesUntilExpirationAt(now time.Time) int {
	if !s.HasValidTokenAt(now) {
		return 0
	}
	return int(s.TokenExpirationTime.Sub(now) / time.Minute)
}

// IsFullyAuthenticatedAt reports whether the token is valid and an identity has been resolved.
func (s Session) IsFullyAuthenticatedAt(now time.Time) bool {
	return s.HasValidTokenAt(now) && s.Identity != nil
}

// PKCEContext is the state carried from the authorization redirect to the callback.
type PKCEContext struct {
	Verifier  string    `json:"verifier"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the context is older than maxAge at now. A non-positive maxAge never expires.
func (c PKCEContext) Expired(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && now.Sub(c.CreatedAt) > maxAge
}
