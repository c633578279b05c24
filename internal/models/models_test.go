package models

import (
	"encoding/json"
	"testing"
)

func TestIdentity(t *testing.T) {
	t.Run("Decodes API Shape", func(t *testing.T) {
		body := `{
			"id": "user-1",
			"display_name": "Test User",
			"email": "test@example.com",
			"country": "US",
			"followers": {"href": null, "total": 42},
			"external_urls": {"spotify": "https://open.spotify.com/user/user-1"},
			"images": [{"url": "https://i.scdn.co/image/abc", "height": 64, "width": 64}]
		}`

		var identity Identity
		if err := json.Unmarshal([]byte(body), &identity); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if identity.ID != "user-1" || identity.DisplayName != "Test User" {
			t.Errorf("unexpected identity: %+v", identity)
		}
		if identity.Followers != 42 {
			t.Errorf("expected 42 followers, got %d", identity.Followers)
		}
		if identity.ProfileURL != "https://open.spotify.com/user/user-1" {
			t.Errorf("unexpected profile url %q", identity.ProfileURL)
		}
		if len(identity.Images) != 1 || identity.Images[0].Height != 64 {
			t.Errorf("unexpected images: %+v", identity.Images)
		}
	})

	t.Run("Round Trips Flattened Shape", func(t *testing.T) {
		original := Identity{ID: "user-1", DisplayName: "Test", Followers: 7, ProfileURL: "https://example.com"}
		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded Identity
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decoded.Followers != 7 || decoded.ProfileURL != "https://example.com" {
			t.Errorf("unexpected decoded identity: %+v", decoded)
		}
	})

	t.Run("Guest", func(t *testing.T) {
		guest := GuestIdentity()
		if guest.DisplayName != "Guest User" || guest.ID != "guest" {
			t.Errorf("unexpected guest identity: %+v", guest)
		}
		if !guest.IsGuest() {
			t.Error("expected IsGuest to be true")
		}

		var nilIdentity *Identity
		if nilIdentity.IsGuest() {
			t.Error("nil identity should not be guest")
		}
		if nilIdentity.Name() != "" {
			t.Error("nil identity should have an empty name")
		}
	})

	t.Run("Name Falls Back To ID", func(t *testing.T) {
		identity := &Identity{ID: "user-1"}
		if identity.Name() != "user-1" {
			t.Errorf("expected id fallback, got %q", identity.Name())
		}
	})
}

func TestPage(t *testing.T) {
	body := `{"items": [{"id": "p1", "name": "Mix", "tracks": {"total": 12}, "owner": {"id": "u1"}}], "total": 1, "limit": 20, "offset": 0, "next": null}`

	var page Page[Playlist]
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.HasNext() {
		t.Error("expected no next page")
	}
	if len(page.Items) != 1 || page.Items[0].TrackCount() != 12 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestAlbumArtistNames(t *testing.T) {
	album := Album{Artists: []Artist{{Name: "A"}, {Name: "B"}}}
	names := album.ArtistNames()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestLoginEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   *LoginEvent
		wantErr bool
	}{
		{"valid", NewLoginEvent(LoginKindGuest, OutcomeSuccess, ""), false},
		{"unknown kind", NewLoginEvent("password", OutcomeSuccess, ""), true},
		{"unknown outcome", NewLoginEvent(LoginKindLogout, "maybe", ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
