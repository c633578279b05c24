// package formatter renders session state and Web API resources as text, CSV or JSON
package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format %q (expected text, json or csv)", shared.ErrInvalidArgument, s)
	}
}

// Status summarizes the session for `auth status`.
type Status struct {
	State            string     `json:"state"`
	Authenticated    bool       `json:"authenticated"`
	Guest            bool       `json:"guest"`
	DisplayName      string     `json:"display_name,omitempty"`
	UserID           string     `json:"user_id,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	MinutesRemaining int        `json:"minutes_remaining"`
	PendingLogin     bool       `json:"pending_login"`
	LastError        string     `json:"last_error,omitempty"`
	LastEvent        *Event     `json:"last_event,omitempty"`
}

// Event is the JSON shape of a [models.LoginEvent].
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent converts a persisted event for output.
func NewEvent(e *models.LoginEvent) *Event {
	if e == nil {
		return nil
	}
	return &Event{
		ID:        e.ID(),
		Kind:      string(e.Kind()),
		Outcome:   string(e.Outcome()),
		Message:   e.Message(),
		CreatedAt: e.CreatedAt(),
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteStatus renders s as aligned key/value lines.
func WriteStatus(w io.Writer, s Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "State:\t%s\n", s.State)
	switch {
	case s.Authenticated && s.Guest:
		fmt.Fprintf(tw, "Session:\t✓ Guest session\n")
	case s.Authenticated:
		fmt.Fprintf(tw, "Session:\t✓ Authenticated\n")
	default:
		fmt.Fprintf(tw, "Session:\t✗ Not authenticated\n")
	}
	if s.DisplayName != "" {
		fmt.Fprintf(tw, "User:\t%s (%s)\n", s.DisplayName, s.UserID)
	}
	if s.Authenticated && s.ExpiresAt != nil {
		fmt.Fprintf(tw, "Expires:\t%s (%d min)\n", s.ExpiresAt.Local().Format(time.DateTime), s.MinutesRemaining)
	}
	if s.PendingLogin {
		fmt.Fprintf(tw, "Pending:\tlogin awaiting callback\n")
	}
	if s.LastError != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", s.LastError)
	}
	if s.LastEvent != nil {
		fmt.Fprintf(tw, "Last event:\t%s %s at %s\n", s.LastEvent.Kind, s.LastEvent.Outcome, s.LastEvent.CreatedAt.Local().Format(time.DateTime))
	}

	return tw.Flush()
}

// WriteIdentity renders a user profile.
func WriteIdentity(w io.Writer, identity *models.Identity) error {
	if identity == nil {
		_, err := fmt.Fprintln(w, "No user profile loaded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", identity.Name())
	fmt.Fprintf(tw, "ID:\t%s\n", identity.ID)
	if identity.Email != "" {
		fmt.Fprintf(tw, "Email:\t%s\n", identity.Email)
	}
	if identity.Country != "" {
		fmt.Fprintf(tw, "Country:\t%s\n", identity.Country)
	}
	if identity.Product != "" {
		fmt.Fprintf(tw, "Plan:\t%s\n", identity.Product)
	}
	if !identity.IsGuest() {
		fmt.Fprintf(tw, "Followers:\t%d\n", identity.Followers)
	}
	if identity.ProfileURL != "" {
		fmt.Fprintf(tw, "Profile:\t%s\n", identity.ProfileURL)
	}
	return tw.Flush()
}

// WritePlaylists renders a page of playlists in the requested format.
func WritePlaylists(w io.Writer, playlists []models.Playlist, format Format) error {
	headers := []string{"ID", "Name", "Owner", "Tracks", "Visibility"}
	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, []string{p.ID, p.Name, p.Owner.DisplayName, strconv.Itoa(p.TrackCount()), VisibilityString(p.Public)})
	}
	return writeTable(w, format, playlists, headers, rows)
}

// WriteAlbums renders albums in the requested format.
func WriteAlbums(w io.Writer, albums []models.Album, format Format) error {
	headers := []string{"ID", "Name", "Artists", "Released", "Tracks"}
	rows := make([][]string, 0, len(albums))
	for _, a := range albums {
		rows = append(rows, []string{a.ID, a.Name, strings.Join(a.ArtistNames(), ", "), a.ReleaseDate, strconv.Itoa(a.TotalTracks)})
	}
	return writeTable(w, format, albums, headers, rows)
}

// WriteEvents renders the login history.
func WriteEvents(w io.Writer, events []*models.LoginEvent, format Format) error {
	out := make([]*Event, 0, len(events))
	headers := []string{"When", "Kind", "Outcome", "Message"}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		out = append(out, NewEvent(e))
		rows = append(rows, []string{e.CreatedAt().Local().Format(time.DateTime), string(e.Kind()), string(e.Outcome()), e.Message()})
	}
	return writeTable(w, format, out, headers, rows)
}

func writeTable(w io.Writer, format Format, raw any, headers []string, rows [][]string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, raw)
	case FormatCSV:
		return writeCSV(w, headers, rows)
	default:
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No results")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return nil
}

// VisibilityString returns "Public" or "Private".
func VisibilityString(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}
