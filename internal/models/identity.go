package models

import "encoding/json"

const (
	GuestID          = "guest"
	GuestDisplayName = "Guest User"
)

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Identity is the signed in user's profile as returned by /v1/me.
//
// Followers and ProfileURL are flattened from the nested followers and external_urls objects.
type Identity struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email,omitempty"`
	Country     string  `json:"country,omitempty"`
	Product     string  `json:"product,omitempty"`
	Images      []Image `json:"images,omitempty"`
	Followers   int     `json:"followers"`
	ProfileURL  string  `json:"profile_url,omitempty"`
}

// GuestIdentity returns the synthetic identity used while in guest mode.
func GuestIdentity() *Identity {
	return &Identity{ID: GuestID, DisplayName: GuestDisplayName}
}

// IsGuest reports whether i is the synthetic guest identity.
func (i *Identity) IsGuest() bool {
	return i != nil && i.ID == GuestID
}

// Name returns the display name, falling back to the id.
func (i *Identity) Name() string {
	if i == nil {
		return ""
	}
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.ID
}

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// UnmarshalJSON decodes the Spotify user object shape.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           string          `json:"id"`
		DisplayName  string          `json:"display_name"`
		Email        string          `json:"email"`
		Country      string          `json:"country"`
		Product      string          `json:"product"`
		Images       []Image         `json:"images"`
		Followers    json.RawMessage `json:"followers"`
		ExternalURLs externalURLs    `json:"external_urls"`
		ProfileURL   string          `json:"profile_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Identity{
		ID:          raw.ID,
		DisplayName: raw.DisplayName,
		Email:       raw.Email,
		Country:     raw.Country,
		Product:     raw.Product,
		Images:      raw.Images,
		ProfileURL:  raw.ExternalURLs.Spotify,
	}
	if i.ProfileURL == "" {
		i.ProfileURL = raw.ProfileURL
	}

	// followers is an object from the API and a plain number once re-encoded by us.
	if len(raw.Followers) > 0 && string(raw.Followers) != "null" {
		var f followers
		if err := json.Unmarshal(raw.Followers, &f); err != nil {
			if err := json.Unmarshal(raw.Followers, &i.Followers); err != nil {
				return err
			}
		} else {
			i.Followers = f.Total
		}
	}

	return nil
}
