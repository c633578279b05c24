package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/repositories"
	"github.com/desertthunder/spotdash/internal/shared"
)

const storageTimeout = 5 * time.Second

// Store owns the single [Session] for the process.
type Store struct {
	mu      sync.RWMutex
	session Session

	kv     repositories.KeyValueStore
	now    func() time.Time
	logger *log.Logger

	subs   map[int]chan Session
	nextID int
}

// Option configures a [Store].
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store backed by kv and restores any persisted session.
//
// A persisted token is restored only when its expiry lies in the future; otherwise the stale
// token and expiry are deleted. A persisted guest flag restores guest mode with the synthetic
// guest identity.
func New(kv repositories.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		logger: shared.NewLogger(nil),
		subs:   make(map[int]chan Session),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore()
	return s
}

func (s *Store) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	token, tokenErr := s.kv.Get(ctx, KeyAccessToken)
	rawExpiry, expiryErr := s.kv.Get(ctx, KeyTokenExpiration)

	switch {
	case tokenErr == nil && expiryErr == nil:
		ms, err := strconv.ParseInt(rawExpiry, 10, 64)
		expiry := time.UnixMilli(ms)
		if err == nil && token != "" && s.now().Before(expiry) {
			s.session.AccessToken = token
			s.session.TokenExpirationTime = expiry
			s.logger.Debug("restored session token", "expires", expiry)
		} else {
			s.scrubToken(ctx)
		}
	case tokenErr == nil || expiryErr == nil:
		s.scrubToken(ctx)
	default:
		s.logReadError(tokenErr, KeyAccessToken)
		s.logReadError(expiryErr, KeyTokenExpiration)
	}

	guest, err := s.kv.Get(ctx, KeyIsGuest)
	if err != nil {
		s.logReadError(err, KeyIsGuest)
		return
	}
	if isGuest, _ := strconv.ParseBool(guest); isGuest {
		s.session.IsGuestMode = true
		if s.session.Identity == nil {
			s.session.Identity = models.GuestIdentity()
		}
	}
}

func (s *Store) scrubToken(ctx context.Context) {
	s.logger.Debug("discarding expired or partial stored token")
	if err := s.kv.Delete(ctx, KeyAccessToken, KeyTokenExpiration); err != nil {
		s.logger.Warn("failed to purge stale token", "error", err)
	}
}

func (s *Store) logReadError(err error, key string) {
	if err != nil && !errors.Is(err, shared.ErrKeyNotFound) {
		s.logger.Warn("failed to read stored session value", "key", key, "error", err)
	}
}

// persist writes pairs to durable storage, logging instead of returning failures.
func (s *Store) persist(pairs ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	for i := 0; i+1 < len(pairs); i += 2 {
		if err := s.kv.Set(ctx, pairs[i], pairs[i+1]); err != nil {
			s.logger.Warn("failed to persist session value", "key", pairs[i], "error", err)
		}
	}
}

// update applies fn under the write lock and publishes the resulting snapshot.
func (s *Store) update(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.session)
	s.publish()
}

// SetToken stores a freshly issued token that expires expiresIn from now and clears any error.
func (s *Store) SetToken(token string, expiresIn time.Duration) {
	s.update(func(sess *Session) {
		sess.AccessToken = token
		sess.TokenExpirationTime = s.now().Add(expiresIn)
		sess.LastError = ""
		s.persist(
			KeyAccessToken, token,
			KeyTokenExpiration, strconv.FormatInt(sess.TokenExpirationTime.UnixMilli(), 10),
		)
	})
}

// SetIdentity replaces the in-memory identity. Identities are never persisted.
func (s *Store) SetIdentity(identity *models.Identity) {
	s.update(func(sess *Session) {
		sess.Identity = identity
	})
}

// SetGuestMode persists the guest flag. Enabling it without an identity synthesizes the guest identity.
func (s *Store) SetGuestMode(guest bool) {
	s.update(func(sess *Session) {
		sess.IsGuestMode = guest
		if guest && sess.Identity == nil {
			sess.Identity = models.GuestIdentity()
		}
		s.persist(KeyIsGuest, strconv.FormatBool(guest))
	})
}

// EndGuestMode clears the guest flag and the guest identity in a single update.
func (s *Store) EndGuestMode() {
	s.update(func(sess *Session) {
		sess.IsGuestMode = false
		sess.Identity = nil
		s.persist(KeyIsGuest, strconv.FormatBool(false))
	})
}

// SetLoading toggles the transient loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(sess *Session) {
		sess.IsLoading = loading
	})
}

// SetError records a user facing error message. An empty message clears it.
func (s *Store) SetError(message string) {
	s.update(func(sess *Session) {
		sess.LastError = message
	})
}

// Clear resets the session and deletes every durable key, including any pending PKCE context.
func (s *Store) Clear() {
	s.update(func(sess *Session) {
		*sess = Session{}

		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		if err := s.kv.Delete(ctx, Keys...); err != nil {
			s.logger.Warn("failed to delete stored session", "error", err)
		}
	})
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// HasValidToken reports whether a non-expired token is held.
func (s *Store) HasValidToken() bool {
	return s.Snapshot().HasValidTokenAt(s.now())
}

// MinutesUntilExpiration returns whole minutes until the token expires, or 0.
func (s *Store) MinutesUntilExpiration() int {
	return s.Snapshot().MinutesUntilExpirationAt(s.now())
}

// IsFullyAuthenticated reports whether a valid token and an identity are both present.
func (s *Store) IsFullyAuthenticated() bool {
	return s.Snapshot().IsFullyAuthenticatedAt(s.now())
}

// AccessToken returns the token while it is valid and "" otherwise.
func (s *Store) AccessToken() string {
	snap := s.Snapshot()
	if !snap.HasValidTokenAt(s.now()) {
		return ""
	}
	return snap.AccessToken
}

// Subscribe returns a channel receiving a snapshot after every mutation, and a func that unsubscribes.
//
// The channel holds only the most recent snapshot; slow readers skip intermediate states but never
// block writers.
func (s *Store) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Session, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// publish must be called with mu held.
func (s *Store) publish() {
	snap := s.session
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// SavePKCEContext persists the exchange context for the pending authorization.
func (s *Store) SavePKCEContext(ctx context.Context, pkce PKCEContext) error {
	data, err := json.Marshal(pkce)
	if err != nil {
		return fmt.Errorf("failed to encode PKCE context: %w", err)
	}
	if err := s.kv.Set(ctx, KeyVerifier, string(data)); err != nil {
		return fmt.Errorf("failed to store PKCE context: %w", err)
	}
	return nil
}

// PKCEContext loads the pending exchange context.
//
// A missing value returns [shared.ErrKeyNotFound]; a value that does not decode returns [shared.ErrMissingVerifier].
func (s *Store) PKCEContext(ctx context.Context) (*PKCEContext, error) {
	raw, err := s.kv.Get(ctx, KeyVerifier)
	if err != nil {
		return nil, err
	}

	var pkce PKCEContext
	if err := json.Unmarshal([]byte(raw), &pkce); err != nil || pkce.Verifier == "" {
		return nil, fmt.Errorf("%w: stored context is unreadable", shared.ErrMissingVerifier)
	}
	return &pkce, nil
}

// DeletePKCEContext removes the pending exchange context. Failures are logged.
func (s *Store) DeletePKCEContext(ctx context.Context) {
	if err := s.kv.Delete(ctx, KeyVerifier); err != nil {
		s.logger.Warn("failed to delete PKCE context", "error", err)
	}
}
