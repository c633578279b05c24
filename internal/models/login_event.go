package models

import (
	"fmt"
	"time"
)

// LoginEventKind identifies which flow produced a [LoginEvent].
type LoginEventKind string

const (
	LoginKindAuthorizationCode LoginEventKind = "authorization_code"
	LoginKindGuest             LoginEventKind = "guest"
	LoginKindLogout            LoginEventKind = "logout"
)

// LoginOutcome is the result of the attempt.
type LoginOutcome string

const (
	OutcomeSuccess LoginOutcome = "success"
	OutcomeFailure LoginOutcome = "failure"
)

// LoginEvent records a single authentication attempt for `auth status` history.
type LoginEvent struct {
	id        string
	kind      LoginEventKind
	outcome   LoginOutcome
	message   string
	createdAt time.Time
}

// NewLoginEvent creates an event stamped with the current time. The id is assigned on insert.
func NewLoginEvent(kind LoginEventKind, outcome LoginOutcome, message string) *LoginEvent {
	return &LoginEvent{kind: kind, outcome: outcome, message: message, createdAt: time.Now().UTC()}
}

// RestoreLoginEvent rebuilds an event read from storage.
func RestoreLoginEvent(id string, kind LoginEventKind, outcome LoginOutcome, message string, createdAt time.Time) *LoginEvent {
	return &LoginEvent{id: id, kind: kind, outcome: outcome, message: message, createdAt: createdAt}
}

func (e *LoginEvent) ID() string            { return e.id }
func (e *LoginEvent) SetID(id string)       { e.id = id }
func (e *LoginEvent) Kind() LoginEventKind  { return e.kind }
func (e *LoginEvent) Outcome() LoginOutcome { return e.outcome }
func (e *LoginEvent) Message() string       { return e.message }
func (e *LoginEvent) CreatedAt() time.Time  { return e.createdAt }
func (e *LoginEvent) Succeeded() bool       { return e.outcome == OutcomeSuccess }

// Validate checks that the kind and outcome are known values.
func (e *LoginEvent) Validate() error {
	switch e.kind {
	case LoginKindAuthorizationCode, LoginKindGuest, LoginKindLogout:
	default:
		return fmt.Errorf("unknown login event kind %q", e.kind)
	}

	switch e.outcome {
	case OutcomeSuccess, OutcomeFailure:
	default:
		return fmt.Errorf("unknown login outcome %q", e.outcome)
	}

	if e.createdAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}
