package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotdash/internal/auth"
	"github.com/desertthunder/spotdash/internal/server"
	"github.com/desertthunder/spotdash/internal/services"
	"github.com/desertthunder/spotdash/internal/shared"
	tu "github.com/desertthunder/spotdash/internal/testing"
)

// fakeSpotify serves the token endpoint and the Web API paths the commands use.
type fakeSpotify struct {
	srv        *httptest.Server
	mu         sync.Mutex
	tokenForms []url.Values
	basicAuth  []string
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()
	f := &fakeSpotify{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		f.mu.Lock()
		f.tokenForms = append(f.tokenForms, r.PostForm)
		if user, pass, ok := r.BasicAuth(); ok {
			f.basicAuth = append(f.basicAuth, user+":"+pass)
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%s","token_type":"Bearer","expires_in":3600}`, r.PostForm.Get("grant_type"))
	})
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"ada","display_name":"Ada","email":"ada@example.com","followers":{"total":3}}`)
	})
	mux.HandleFunc("GET /v1/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "2" {
			io.WriteString(w, `{"items":[{"id":"p3","name":"Focus","owner":{"display_name":"Ada"},"tracks":{"total":7}}],"total":3,"limit":2,"offset":2,"next":null}`)
			return
		}
		fmt.Fprintf(w, `{"items":[{"id":"p1","name":"Road Trip","owner":{"display_name":"Ada"},"public":true,"tracks":{"total":12}},{"id":"p2","name":"Chill","owner":{"display_name":"Ada"},"tracks":{"total":4}}],"total":3,"limit":2,"offset":0,"next":"%s/v1/me/playlists?offset=2&limit=2"}`, f.srv.URL)
	})
	mux.HandleFunc("GET /v1/users/{id}/playlists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[{"id":"u1","name":"Public Mix","owner":{"display_name":"%s"},"tracks":{"total":1}}],"total":1,"next":null}`, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/me/albums", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[{"added_at":"2025-05-01T00:00:00Z","album":{"id":"al0","name":"Saved","artists":[{"name":"Old Band"}],"release_date":"2020-01-01","total_tracks":10}}],"total":1,"next":null}`)
	})
	mux.HandleFunc("GET /v1/browse/new-releases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"albums":{"items":[{"id":"al1","name":"Debut","artists":[{"name":"Band"}],"release_date":"2025-05-30","total_tracks":9}],"total":1,"next":null}}`)
	})
	mux.HandleFunc("GET /v1/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"status":404,"message":"Not found"}}`)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSpotify) forms() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.tokenForms...)
}

func (f *fakeSpotify) auths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.basicAuth...)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T, api string) *shared.Config {
	t.Helper()
	port := freePort(t)

	cfg := shared.DefaultConfig()
	cfg.Credentials.Spotify.ClientID = "client-123"
	cfg.Credentials.Spotify.ClientSecret = "secret-456"
	cfg.Credentials.Spotify.RedirectURI = fmt.Sprintf("http://127.0.0.1:%d/callback", port)
	cfg.Auth.AuthorizeURL = "https://accounts.example.com/authorize"
	cfg.Auth.TokenURL = api + "/api/token"
	cfg.Auth.APIBaseURL = api
	cfg.Auth.RateLimit = 1000
	cfg.Auth.CallbackTimeout = 5 * time.Second
	cfg.Storage.Backend = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "spotdash.db")
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	return cfg
}

func newTestRunner(t *testing.T, cfg *shared.Config, nav auth.Navigator) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:    cfg,
		Navigator: nav,
		Logger:    shared.NewLogger(io.Discard),
		Output:    output,
	})
	t.Cleanup(func() { runner.Close() })
	return runner, output
}

func run(r *Runner, args ...string) error {
	return newApp(r).Run(context.Background(), append([]string{"spotdash"}, args...))
}

// redirectingNavigator plays the browser: it follows the authorization URL straight to the redirect URI.
type redirectingNavigator struct {
	redirectURI string
	query       string
}

func (n *redirectingNavigator) Navigate(_ context.Context, authURL string) error {
	u, err := url.Parse(authURL)
	if err != nil {
		return err
	}
	target := n.redirectURI + "?state=" + url.QueryEscape(u.Query().Get("state")) + "&" + n.query

	go func() {
		resp, err := http.Get(target)
		if err == nil {
			resp.Body.Close()
		}
	}()
	return nil
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			nav := &tu.Navigator{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Navigator:  nav,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.navigator != nav {
				t.Error("expected navigator to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("Next steps:"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\nNext steps:\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		names := map[string]bool{}
		for i, cmd := range runner.register() {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "me", "playlists", "albums", "releases", "api", "tui"} {
			if !names[want] {
				t.Errorf("expected %q to be registered", want)
			}
		}
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads config from file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			cfg := shared.DefaultConfig()
			cfg.Credentials.Spotify.ClientID = "from-file"
			cfg.Storage.Backend = "memory"
			if err := shared.SaveConfig(path, cfg); err != nil {
				t.Fatalf("SaveConfig() error = %v", err)
			}

			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
			if err := run(runner, "--config", path, "auth", "status"); err != nil {
				t.Fatalf("auth status error = %v", err)
			}
			if runner.config.Credentials.Spotify.ClientID != "from-file" {
				t.Errorf("expected config from file, got client id %q", runner.config.Credentials.Spotify.ClientID)
			}
		})

		t.Run("rejects unknown log level", func(t *testing.T) {
			cfg := shared.DefaultConfig()
			cfg.Log.Level = "verbose"
			runner, _ := newTestRunner(t, cfg, nil)

			err := run(runner, "auth", "status")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("open validates config", func(t *testing.T) {
			cfg := shared.DefaultConfig()
			cfg.Credentials.Spotify.ClientID = ""
			runner, _ := newTestRunner(t, cfg, nil)

			err := run(runner, "auth", "status")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}

func TestSetup(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

		if err := run(runner, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("setup config error = %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "[credentials.spotify]") {
			t.Error("expected the example config to be written")
		}

		if err := run(runner, "--config", path, "setup", "config"); err == nil {
			t.Error("expected an error when the config already exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Database.Path = filepath.Join(t.TempDir(), "spotdash.db")
		runner, output := newTestRunner(t, cfg, nil)

		if err := run(runner, "setup", "database"); err != nil {
			t.Fatalf("setup database error = %v", err)
		}
		tu.AssertFileExists(t, cfg.Database.Path)
		if !strings.Contains(output.String(), "✓ Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status without session", func(t *testing.T) {
		api := newFakeSpotify(t)
		runner, output := newTestRunner(t, testConfig(t, api.srv.URL), nil)

		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("auth status error = %v", err)
		}
		if !strings.Contains(output.String(), "✗ Not authenticated") {
			t.Errorf("unexpected status output %q", output.String())
		}
	})

	t.Run("login through the loopback listener", func(t *testing.T) {
		api := newFakeSpotify(t)
		cfg := testConfig(t, api.srv.URL)
		nav := &redirectingNavigator{redirectURI: cfg.Credentials.Spotify.RedirectURI, query: "code=abc123"}
		runner, output := newTestRunner(t, cfg, nav)

		if err := run(runner, "auth", "login"); err != nil {
			t.Fatalf("auth login error = %v", err)
		}
		if !strings.Contains(output.String(), "https://accounts.example.com/authorize?") {
			t.Errorf("expected the authorization URL to be printed: %q", output.String())
		}
		if !strings.Contains(output.String(), "✓ Logged in as Ada") {
			t.Errorf("unexpected login output %q", output.String())
		}

		forms := api.forms()
		if len(forms) != 1 {
			t.Fatalf("expected one token request, got %d", len(forms))
		}
		if forms[0].Get("code") != "abc123" || forms[0].Get("code_verifier") == "" {
			t.Errorf("unexpected token form %v", forms[0])
		}

		t.Run("session survives a new process", func(t *testing.T) {
			next, output := newTestRunner(t, cfg, nil)
			if err := run(next, "auth", "status", "--json", "--history", "5"); err != nil {
				t.Fatalf("auth status error = %v", err)
			}

			var report struct {
				State         string `json:"state"`
				Authenticated bool   `json:"authenticated"`
				History       []struct {
					Kind    string `json:"kind"`
					Outcome string `json:"outcome"`
				} `json:"history"`
			}
			if err := json.Unmarshal(output.Bytes(), &report); err != nil {
				t.Fatalf("invalid JSON %q: %v", output.String(), err)
			}
			if !report.Authenticated || report.State != "authenticated" {
				t.Errorf("expected restored authenticated session, got %+v", report)
			}
			if len(report.History) != 1 || report.History[0].Kind != "authorization_code" || report.History[0].Outcome != "success" {
				t.Errorf("unexpected history %+v", report.History)
			}
		})

		t.Run("second login is a no-op", func(t *testing.T) {
			output.Reset()
			if err := run(runner, "auth", "login"); err != nil {
				t.Fatalf("auth login error = %v", err)
			}
			if !strings.Contains(output.String(), "Already signed in") {
				t.Errorf("unexpected output %q", output.String())
			}
			if len(api.forms()) != 1 {
				t.Errorf("expected no further token requests, got %d", len(api.forms()))
			}
		})
	})

	t.Run("login reports provider denial", func(t *testing.T) {
		api := newFakeSpotify(t)
		cfg := testConfig(t, api.srv.URL)
		nav := &redirectingNavigator{redirectURI: cfg.Credentials.Spotify.RedirectURI, query: "error=access_denied"}
		runner, _ := newTestRunner(t, cfg, nav)

		err := run(runner, "auth", "login")
		if !errors.Is(err, shared.ErrProviderDenied) {
			t.Fatalf("expected ErrProviderDenied, got %v", err)
		}
		if len(api.forms()) != 0 {
			t.Errorf("expected no token request, got %d", len(api.forms()))
		}
		if got := runner.session.Snapshot().LastError; got != "Authentication failed: access_denied" {
			t.Errorf("unexpected session error %q", got)
		}
	})

	t.Run("callback completes a login started elsewhere", func(t *testing.T) {
		api := newFakeSpotify(t)
		cfg := testConfig(t, api.srv.URL)

		first, _ := newTestRunner(t, cfg, nil)
		if err := first.open(context.Background()); err != nil {
			t.Fatalf("open() error = %v", err)
		}
		authURL, err := first.controller.InitiateLogin(context.Background())
		if err != nil {
			t.Fatalf("InitiateLogin() error = %v", err)
		}
		u, _ := url.Parse(authURL)
		first.Close()

		second, output := newTestRunner(t, cfg, nil)
		redirected := cfg.Credentials.Spotify.RedirectURI + "?code=later&state=" + url.QueryEscape(u.Query().Get("state"))
		if err := run(second, "auth", "callback", redirected); err != nil {
			t.Fatalf("auth callback error = %v", err)
		}
		if !strings.Contains(output.String(), "✓ Logged in as Ada") {
			t.Errorf("unexpected output %q", output.String())
		}

		forms := api.forms()
		if len(forms) != 1 || forms[0].Get("code") != "later" {
			t.Errorf("unexpected token requests %v", forms)
		}
	})

	t.Run("callback requires a URL", func(t *testing.T) {
		api := newFakeSpotify(t)
		runner, _ := newTestRunner(t, testConfig(t, api.srv.URL), nil)

		if err := run(runner, "auth", "callback"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("guest then logout", func(t *testing.T) {
		api := newFakeSpotify(t)
		cfg := testConfig(t, api.srv.URL)
		runner, output := newTestRunner(t, cfg, nil)

		if err := run(runner, "auth", "guest"); err != nil {
			t.Fatalf("auth guest error = %v", err)
		}
		if !strings.Contains(output.String(), "✓ Guest session started") {
			t.Errorf("unexpected output %q", output.String())
		}
		if auths := api.auths(); len(auths) != 1 || auths[0] != "client-123:secret-456" {
			t.Errorf("expected Basic client authentication, got %v", auths)
		}
		if got := api.forms()[0].Get("grant_type"); got != "client_credentials" {
			t.Errorf("expected client_credentials grant, got %q", got)
		}

		output.Reset()
		if err := run(runner, "auth", "guest"); err != nil {
			t.Fatalf("second auth guest error = %v", err)
		}
		if !strings.Contains(output.String(), "Already signed in") {
			t.Errorf("expected already signed in notice, got %q", output.String())
		}
		if n := len(api.forms()); n != 1 {
			t.Errorf("expected a single token request, got %d", n)
		}

		output.Reset()
		if err := run(runner, "me"); err != nil {
			t.Fatalf("me error = %v", err)
		}
		if !strings.Contains(output.String(), "Guest User") {
			t.Errorf("expected guest identity, got %q", output.String())
		}

		output.Reset()
		if err := run(runner, "auth", "logout"); err != nil {
			t.Fatalf("auth logout error = %v", err)
		}
		if !strings.Contains(output.String(), "✓ Logged out") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("auth status error = %v", err)
		}
		if !strings.Contains(output.String(), "✗ Not authenticated") || !strings.Contains(output.String(), "logout success") {
			t.Errorf("unexpected status after logout %q", output.String())
		}
	})

	t.Run("awaitCallback times out", func(t *testing.T) {
		api := newFakeSpotify(t)
		cfg := testConfig(t, api.srv.URL)
		cfg.Auth.CallbackTimeout = 10 * time.Millisecond
		runner, _ := newTestRunner(t, cfg, nil)
		if err := runner.open(context.Background()); err != nil {
			t.Fatalf("open() error = %v", err)
		}

		handler, err := server.NewCallbackHandler(runner.controller, cfg.Credentials.Spotify.RedirectURI)
		if err != nil {
			t.Fatalf("NewCallbackHandler() error = %v", err)
		}
		if _, err := runner.awaitCallback(context.Background(), handler); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestCallbackParams(t *testing.T) {
	tc := []struct {
		name    string
		raw     string
		code    string
		wantErr error
	}{
		{name: "full URL", raw: "http://127.0.0.1:3000/callback?code=abc&state=xyz", code: "abc"},
		{name: "bare query", raw: "code=abc&state=xyz", code: "abc"},
		{name: "leading question mark", raw: "?code=abc", code: "abc"},
		{name: "padded", raw: "  http://127.0.0.1:3000/callback?code=abc  ", code: "abc"},
		{name: "empty", raw: " ", wantErr: shared.ErrMissingArgument},
		{name: "bad escape", raw: "code=%zz", wantErr: shared.ErrInvalidArgument},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			params, err := callbackParams(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("callbackParams() error = %v", err)
			}
			if params.Get("code") != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, params.Get("code"))
			}
		})
	}
}

func TestResourceCommands(t *testing.T) {
	signedIn := func(t *testing.T) (*Runner, *bytes.Buffer) {
		t.Helper()
		api := newFakeSpotify(t)
		runner, output := newTestRunner(t, testConfig(t, api.srv.URL), nil)
		if err := run(runner, "auth", "guest"); err != nil {
			t.Fatalf("auth guest error = %v", err)
		}
		output.Reset()
		return runner, output
	}

	t.Run("requires a session", func(t *testing.T) {
		api := newFakeSpotify(t)
		runner, _ := newTestRunner(t, testConfig(t, api.srv.URL), nil)

		for _, args := range [][]string{{"me"}, {"playlists"}, {"albums"}, {"releases"}, {"api", "get", "/v1/me"}} {
			if err := run(runner, args...); !errors.Is(err, shared.ErrUnauthenticated) {
				t.Errorf("%v: expected ErrUnauthenticated, got %v", args, err)
			}
		}
	})

	t.Run("playlists follows pagination with --all", func(t *testing.T) {
		runner, output := signedIn(t)

		if err := run(runner, "playlists", "--limit", "2", "--all", "--format", "csv"); err != nil {
			t.Fatalf("playlists error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header plus three rows, got %q", output.String())
		}
		if lines[0] != "ID,Name,Owner,Tracks,Visibility" || !strings.HasPrefix(lines[3], "p3,Focus") {
			t.Errorf("unexpected CSV %q", output.String())
		}
	})

	t.Run("playlists single page", func(t *testing.T) {
		runner, output := signedIn(t)

		if err := run(runner, "playlists", "--limit", "2"); err != nil {
			t.Fatalf("playlists error = %v", err)
		}
		if strings.Contains(output.String(), "Focus") || !strings.Contains(output.String(), "Road Trip") {
			t.Errorf("expected only the first page, got %q", output.String())
		}
	})

	t.Run("playlists for another user", func(t *testing.T) {
		runner, output := signedIn(t)

		if err := run(runner, "playlists", "--user", "bob"); err != nil {
			t.Fatalf("playlists error = %v", err)
		}
		if !strings.Contains(output.String(), "Public Mix") || !strings.Contains(output.String(), "bob") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		runner, _ := signedIn(t)
		if err := run(runner, "playlists", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("albums", func(t *testing.T) {
		runner, output := signedIn(t)

		if err := run(runner, "albums"); err != nil {
			t.Fatalf("albums error = %v", err)
		}
		if !strings.Contains(output.String(), "Saved") || !strings.Contains(output.String(), "Old Band") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("releases as JSON", func(t *testing.T) {
		runner, output := signedIn(t)

		if err := run(runner, "releases", "--format", "json"); err != nil {
			t.Fatalf("releases error = %v", err)
		}
		var albums []map[string]any
		if err := json.Unmarshal(output.Bytes(), &albums); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if len(albums) != 1 || albums[0]["name"] != "Debut" {
			t.Errorf("unexpected albums %v", albums)
		}
	})

	t.Run("api get", func(t *testing.T) {
		runner, output := signedIn(t)

		if err := run(runner, "api", "get", "/v1/me"); err != nil {
			t.Fatalf("api get error = %v", err)
		}
		if !strings.Contains(output.String(), `"display_name": "Ada"`) {
			t.Errorf("expected pretty JSON, got %q", output.String())
		}
	})

	t.Run("api get error status", func(t *testing.T) {
		runner, _ := signedIn(t)

		err := run(runner, "api", "get", "/v1/missing")
		var httpErr *services.HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 HTTPError, got %v", err)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("api get requires a path", func(t *testing.T) {
		runner, _ := signedIn(t)
		if err := run(runner, "api", "get"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
