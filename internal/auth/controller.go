package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/pkce"
	"github.com/desertthunder/spotdash/internal/session"
	"github.com/desertthunder/spotdash/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// defaultTokenLifetime is assumed when the provider omits expires_in.
const defaultTokenLifetime = time.Hour

// Navigator sends the user agent to the authorization URL.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// IdentityLoader fetches the signed in user's profile.
type IdentityLoader interface {
	Me(ctx context.Context) (*models.Identity, error)
}

// EventRecorder stores an audit record of each attempt.
type EventRecorder interface {
	Record(kind models.LoginEventKind, outcome models.LoginOutcome, message string) error
}

// Controller runs the authorization flow and writes its results to a [session.Store].
type Controller struct {
	mu    sync.Mutex
	state State

	cfg     Config
	oauth   *oauth2.Config
	guest   *clientcredentials.Config
	session *session.Store

	navigator  Navigator
	identity   IdentityLoader
	events     EventRecorder
	httpClient *http.Client
	logger     *log.Logger
	newState   func() string
}

// Option configures a [Controller].
type Option func(*Controller)

func WithNavigator(n Navigator) Option           { return func(c *Controller) { c.navigator = n } }
func WithIdentityLoader(l IdentityLoader) Option { return func(c *Controller) { c.identity = l } }
func WithEventRecorder(r EventRecorder) Option   { return func(c *Controller) { c.events = r } }
func WithLogger(l *log.Logger) Option            { return func(c *Controller) { c.logger = l } }

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.httpClient = hc }
}

// New creates a Controller whose initial state reflects the restored session.
//
// A valid token starts the controller in Authenticated (or GuestAuthenticated). A stored, unexpired
// PKCE context means this process is resuming for the callback, so it starts in AwaitingCallback.
func New(ctx context.Context, cfg Config, store *session.Store, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		oauth:    cfg.codeConfig(),
		guest:    cfg.guestConfig(),
		session:  store,
		logger:   shared.NewLogger(nil),
		newState: shared.GenerateID,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case store.HasValidToken() && store.Snapshot().IsGuestMode:
		c.state = GuestAuthenticated
	case store.HasValidToken():
		c.state = Authenticated
	default:
		if pending, err := store.PKCEContext(ctx); err == nil && !pending.Expired(store.Now(), cfg.PKCEMaxAge) {
			c.state = AwaitingCallback
		}
	}

	c.logger.Debug("auth controller ready", "state", c.state)
	return c
}

// State returns the current flow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setStateLocked must be called with mu held.
func (c *Controller) setStateLocked(next State) {
	if c.state != next {
		c.logger.Debug("auth state transition", "from", c.state, "to", next)
	}
	c.state = next
}

func (c *Controller) setState(next State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(next)
}

// advance moves from -> to only if no other call changed the state in between.
func (c *Controller) advance(from, to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == from {
		c.setStateLocked(to)
	}
}

func (c *Controller) tokenContext(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *Controller) record(kind models.LoginEventKind, outcome models.LoginOutcome, message string) {
	if c.events == nil {
		return
	}
	if err := c.events.Record(kind, outcome, message); err != nil {
		c.logger.Warn("failed to record login event", "error", err)
	}
}

// fail moves to Error and records message as the user facing error.
func (c *Controller) fail(kind models.LoginEventKind, message string, err error) (State, error) {
	c.setState(Error)
	c.session.SetLoading(false)
	c.session.SetError(message)
	c.record(kind, models.OutcomeFailure, message)
	c.logger.Error("authorization failed", "error", err)
	return Error, err
}

// authenticatedState picks the terminal state matching the current session.
func (c *Controller) authenticatedState() State {
	if c.session.Snapshot().IsGuestMode {
		return GuestAuthenticated
	}
	return Authenticated
}

// InitiateLogin starts the authorization code flow and returns the authorization URL.
//
// The URL is handed to the [Navigator]; a navigation failure is logged and the URL is still
// returned so it can be opened by hand.
func (c *Controller) InitiateLogin(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.session.HasValidToken() {
		c.setStateLocked(c.authenticatedState())
		c.mu.Unlock()
		return "", shared.ErrAlreadyAuthenticated
	}
	if c.state.busy() {
		c.mu.Unlock()
		return "", shared.ErrFlowInProgress
	}
	c.setStateLocked(AwaitingProviderRedirect)
	c.mu.Unlock()

	c.session.SetError("")

	verifier, err := pkce.GenerateVerifier(c.cfg.verifierLength())
	if err != nil {
		_, err = c.fail(models.LoginKindAuthorizationCode, "Failed to start login", err)
		return "", err
	}

	pending := session.PKCEContext{Verifier: verifier, State: c.newState(), CreatedAt: c.session.Now()}
	if err := c.session.SavePKCEContext(ctx, pending); err != nil {
		_, err = c.fail(models.LoginKindAuthorizationCode, "Failed to start login", err)
		return "", err
	}

	authURL := c.oauth.AuthCodeURL(pending.State,
		oauth2.SetAuthURLParam("code_challenge_method", pkce.MethodS256),
		oauth2.SetAuthURLParam("code_challenge", pkce.DeriveChallenge(verifier)),
	)

	if c.navigator != nil {
		if err := c.navigator.Navigate(ctx, authURL); err != nil {
			c.logger.Warn("failed to open browser, open the URL manually", "error", err)
		}
	}
	c.advance(AwaitingProviderRedirect, AwaitingCallback)

	c.logger.Info("waiting for authorization callback")
	return authURL, nil
}

// HandleCallback processes the query parameters the provider appended to the redirect URI.
//
// Only the first callback received while unauthenticated or awaiting the callback is processed.
// Later calls return the current state with nil when authenticated, or [shared.ErrCallbackIgnored].
func (c *Controller) HandleCallback(ctx context.Context, params url.Values) (State, error) {
	const kind = models.LoginKindAuthorizationCode

	c.mu.Lock()
	if !c.state.acceptsCallback() {
		current := c.state
		c.mu.Unlock()
		if current == Authenticated {
			return current, nil
		}
		return current, shared.ErrCallbackIgnored
	}

	if providerErr := params.Get("error"); providerErr != "" {
		c.mu.Unlock()
		c.session.DeletePKCEContext(ctx)
		return c.fail(kind, "Authentication failed: "+providerErr, fmt.Errorf("%w: %s", shared.ErrProviderDenied, providerErr))
	}

	if c.session.HasValidToken() {
		c.setStateLocked(c.authenticatedState())
		c.mu.Unlock()
		return c.State(), nil
	}

	code := params.Get("code")
	if code == "" {
		c.mu.Unlock()
		c.session.DeletePKCEContext(ctx)
		return c.fail(kind, "Authentication failed: no authorization code received", shared.ErrMissingCode)
	}

	c.setStateLocked(ExchangingCode)
	c.mu.Unlock()

	pending, err := c.session.PKCEContext(ctx)
	if err != nil {
		c.session.DeletePKCEContext(ctx)
		return c.fail(kind, "Authentication failed: login session not found, please try again", fmt.Errorf("%w: %v", shared.ErrMissingVerifier, err))
	}
	if pending.Expired(c.session.Now(), c.cfg.PKCEMaxAge) {
		c.session.DeletePKCEContext(ctx)
		return c.fail(kind, "Authentication failed: login session expired, please try again", fmt.Errorf("%w: context expired", shared.ErrMissingVerifier))
	}
	if pending.State != "" && params.Get("state") != pending.State {
		c.session.DeletePKCEContext(ctx)
		return c.fail(kind, "Authentication failed: state mismatch", fmt.Errorf("%w: state mismatch", shared.ErrMissingVerifier))
	}

	return c.exchange(ctx, code, pending.Verifier)
}

func (c *Controller) exchange(ctx context.Context, code, verifier string) (State, error) {
	const kind = models.LoginKindAuthorizationCode

	c.logger.Info("exchanging authorization code", "code", shared.Truncate(code, 10), "redirect_uri", c.cfg.RedirectURI)
	c.session.SetLoading(true)

	token, err := c.oauth.Exchange(c.tokenContext(ctx), code, oauth2.VerifierOption(verifier))
	c.session.DeletePKCEContext(ctx)
	if err != nil {
		if c.session.HasValidToken() {
			c.logger.Warn("token exchange failed but a valid token is present", "error", err)
			c.session.SetLoading(false)
			c.setState(c.authenticatedState())
			return c.State(), nil
		}
		message, wrapped := describeTokenError(err)
		return c.fail(kind, message, wrapped)
	}

	if c.session.Snapshot().IsGuestMode {
		c.session.EndGuestMode()
	}
	c.session.SetToken(token.AccessToken, expiresIn(token))
	c.session.SetLoading(false)
	c.setState(Authenticated)
	c.record(kind, models.OutcomeSuccess, "")
	c.logger.Info("authorization complete", "expires_in", expiresIn(token))

	if c.identity != nil {
		if err := c.LoadIdentity(ctx); err != nil {
			c.logger.Warn("failed to load user profile", "error", err)
		}
	}

	return Authenticated, nil
}

// LoginAsGuest obtains an app token with the client credentials grant and enters guest mode.
//
// A valid token, user or guest, returns [shared.ErrAlreadyAuthenticated] without contacting the provider.
func (c *Controller) LoginAsGuest(ctx context.Context) (State, error) {
	const kind = models.LoginKindGuest

	c.mu.Lock()
	if c.session.HasValidToken() {
		c.setStateLocked(c.authenticatedState())
		current := c.state
		c.mu.Unlock()
		return current, shared.ErrAlreadyAuthenticated
	}
	if c.state.busy() {
		current := c.state
		c.mu.Unlock()
		return current, shared.ErrFlowInProgress
	}
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		c.mu.Unlock()
		return c.fail(kind, "Guest login requires a client secret", shared.ErrMissingCredentials)
	}
	c.setStateLocked(GuestRequested)
	c.mu.Unlock()

	c.session.SetError("")
	c.session.SetLoading(true)

	token, err := c.guest.Token(c.tokenContext(ctx))
	if err != nil {
		message, wrapped := describeTokenError(err)
		return c.fail(kind, "Guest login failed: "+message, wrapped)
	}

	if snap := c.session.Snapshot(); snap.Identity != nil && !snap.Identity.IsGuest() {
		c.session.SetIdentity(nil)
	}
	c.session.SetToken(token.AccessToken, expiresIn(token))
	c.session.SetGuestMode(true)
	c.session.SetLoading(false)
	c.setState(GuestAuthenticated)
	c.record(kind, models.OutcomeSuccess, "")
	c.logger.Info("guest session started", "expires_in", expiresIn(token))

	return GuestAuthenticated, nil
}

// Logout clears the session, including durable storage, and returns to Unauthenticated.
func (c *Controller) Logout() {
	c.session.Clear()
	c.setState(Unauthenticated)
	c.record(models.LoginKindLogout, models.OutcomeSuccess, "")
	c.logger.Info("logged out")
}

// Reset leaves the Error state so the user can try again. Other states are unchanged.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Error {
		c.session.SetError("")
		c.setStateLocked(Unauthenticated)
	}
	return c.state
}

// LoadIdentity fetches the user's profile into the session, toggling the loading flag around the call.
func (c *Controller) LoadIdentity(ctx context.Context) error {
	if c.identity == nil {
		return fmt.Errorf("%w: no identity loader configured", shared.ErrNotImplemented)
	}

	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	identity, err := c.identity.Me(ctx)
	if err != nil {
		c.session.SetError("Failed to load user profile")
		return err
	}
	c.session.SetIdentity(identity)
	return nil
}

func expiresIn(token *oauth2.Token) time.Duration {
	if token.ExpiresIn > 0 {
		return time.Duration(token.ExpiresIn) * time.Second
	}
	if !token.Expiry.IsZero() {
		if d := time.Until(token.Expiry).Round(time.Second); d > 0 {
			return d
		}
	}
	return defaultTokenLifetime
}

// describeTokenError turns a token endpoint failure into a user facing message and a wrapped sentinel.
func describeTokenError(err error) (string, error) {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		message := retrieveErr.ErrorDescription
		if message == "" {
			message = retrieveErr.ErrorCode
		}
		if message == "" {
			message = "Failed to exchange code for token"
		}
		return message, fmt.Errorf("%w: %s", shared.ErrTokenExchangeRejected, message)
	}
	return "Failed to reach the authorization server", fmt.Errorf("%w: %v", shared.ErrTransportFailure, err)
}
