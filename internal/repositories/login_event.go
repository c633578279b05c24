package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

var _ models.Repository[*models.LoginEvent] = (*LoginEventRepository)(nil)

// LoginEventRepository implements models.Repository[*models.LoginEvent] on the login_events table.
type LoginEventRepository struct {
	db *sql.DB
}

// NewLoginEventRepository creates a new LoginEventRepository with the given database connection
func NewLoginEventRepository(db *sql.DB) *LoginEventRepository {
	return &LoginEventRepository{db: db}
}

// Create inserts a new event with a generated ID
func (r *LoginEventRepository) Create(event *models.LoginEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO login_events (id, kind, outcome, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, string(event.Kind()), string(event.Outcome()), event.Message(), event.CreatedAt()); err != nil {
		return fmt.Errorf("failed to insert login event: %w", err)
	}

	event.SetID(id)
	return nil
}

// Get retrieves an event by ID
func (r *LoginEventRepository) Get(id string) (*models.LoginEvent, error) {
	query := `SELECT id, kind, outcome, message, created_at FROM login_events WHERE id = ?`

	event, err := scanLoginEvent(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("login event not found: %s", id)
	}
	return event, err
}

// List retrieves up to limit events, newest first. A non-positive limit returns every event.
func (r *LoginEventRepository) List(limit int) ([]*models.LoginEvent, error) {
	query := `SELECT id, kind, outcome, message, created_at FROM login_events ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query login events: %w", err)
	}
	defer rows.Close()

	var events []*models.LoginEvent
	for rows.Next() {
		event, err := scanLoginEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// Latest returns the most recent event or nil when none exist.
func (r *LoginEventRepository) Latest() (*models.LoginEvent, error) {
	events, err := r.List(1)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return events[0], nil
}

// Delete removes an event by ID
func (r *LoginEventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM login_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete login event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("login event not found: %s", id)
	}

	return nil
}

// Record satisfies the auth package's event recorder.
func (r *LoginEventRepository) Record(kind models.LoginEventKind, outcome models.LoginOutcome, message string) error {
	return r.Create(models.NewLoginEvent(kind, outcome, message))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoginEvent(row scanner) (*models.LoginEvent, error) {
	var (
		id        string
		kind      string
		outcome   string
		message   string
		createdAt time.Time
	)

	if err := row.Scan(&id, &kind, &outcome, &message, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan login event: %w", err)
	}

	return models.RestoreLoginEvent(id, models.LoginEventKind(kind), models.LoginOutcome(outcome), message, createdAt), nil
}
