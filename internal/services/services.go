package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Spotify Web API origin; paths passed to the client include the /v1 prefix.
const DefaultBaseURL = "https://api.spotify.com"

// TokenSource supplies the bearer token. An empty string means no valid token.
type TokenSource interface {
	AccessToken() string
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, shared.Truncate(e.Body, 200))
}

// Unwrap exposes [shared.ErrAPIRequest], plus [shared.ErrUnauthenticated] for 401 responses.
func (e *HTTPError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized {
		return []error{shared.ErrAPIRequest, shared.ErrUnauthenticated}
	}
	return []error{shared.ErrAPIRequest}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SpotifyClient performs bearer authenticated requests against the Web API.
type SpotifyClient struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// ClientOption configures a [SpotifyClient].
type ClientOption func(*SpotifyClient)

// WithBaseURL overrides [DefaultBaseURL].
func WithBaseURL(u string) ClientOption {
	return func(c *SpotifyClient) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *SpotifyClient) { c.httpClient = hc }
}

// WithRateLimit bounds outbound requests per second. Non-positive values disable limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *SpotifyClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithLogger(l *log.Logger) ClientOption {
	return func(c *SpotifyClient) { c.logger = l }
}

// NewSpotifyClient creates a client reading its token from tokens.
func NewSpotifyClient(tokens TokenSource, opts ...ClientOption) *SpotifyClient {
	c := &SpotifyClient{
		baseURL:    DefaultBaseURL,
		tokens:     tokens,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
		logger:     shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SpotifyClient) resolve(path string) string {
	if strings.HasPrefix(path, c.baseURL) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do performs an authenticated request and returns the raw response without interpreting the status code.
func (c *SpotifyClient) Do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	token := c.tokens.AccessToken()
	if token == "" {
		return nil, shared.ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	c.logger.Debug("spotify request", "method", method, "url", req.URL.Redacted())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &jsonData); err == nil {
			apiResp.IsJSON = true
			apiResp.JSONData = jsonData
		}
	}

	return apiResp, nil
}

// Request performs an authenticated request and decodes a 2xx JSON body into out when out is non-nil.
func (c *SpotifyClient) Request(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsUnauthenticated reports whether err means the session has no usable token.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, shared.ErrUnauthenticated)
}
