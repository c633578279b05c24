package auth

import (
	"time"

	"github.com/desertthunder/spotdash/internal/pkce"
	"github.com/desertthunder/spotdash/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Config holds the provider endpoints and client registration used by a [Controller].
type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	Scopes         []string
	AuthorizeURL   string
	TokenURL       string
	VerifierLength int
	PKCEMaxAge     time.Duration
}

// ConfigFrom extracts the auth settings from the application config.
func ConfigFrom(cfg *shared.Config) Config {
	return Config{
		ClientID:       cfg.Credentials.Spotify.ClientID,
		ClientSecret:   cfg.Credentials.Spotify.ClientSecret,
		RedirectURI:    cfg.Credentials.Spotify.RedirectURI,
		Scopes:         cfg.Credentials.Spotify.Scopes,
		AuthorizeURL:   cfg.Auth.AuthorizeURL,
		TokenURL:       cfg.Auth.TokenURL,
		VerifierLength: cfg.Auth.VerifierLength,
		PKCEMaxAge:     cfg.Auth.PKCEMaxAge,
	}
}

func (c Config) verifierLength() int {
	if c.VerifierLength == 0 {
		return pkce.DefaultVerifierLength
	}
	return c.VerifierLength
}

// codeConfig is the public client registration: client_id travels in the form body and no secret is sent.
func (c Config) codeConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthorizeURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// guestConfig authenticates with HTTP Basic client_id:client_secret.
func (c Config) guestConfig() *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
}
