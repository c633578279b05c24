package server

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/desertthunder/spotdash/internal/auth"
)

// exchangeTimeout bounds the processing of a callback once it has been received.
const exchangeTimeout = 30 * time.Second

// CallbackProcessor consumes the redirect's query parameters.
type CallbackProcessor interface {
	HandleCallback(ctx context.Context, params url.Values) (auth.State, error)
}

// CallbackResult is the outcome of the authorization callback.
type CallbackResult struct {
	State auth.State
	Err   error
}

// CallbackHandler receives the provider redirect at a single path.
type CallbackHandler struct {
	processor   CallbackProcessor
	path        string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler serving the path of redirectURI.
func NewCallbackHandler(processor CallbackProcessor, redirectURI string) (*CallbackHandler, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	return &CallbackHandler{
		processor:  processor,
		path:       path,
		resultChan: make(chan CallbackResult, 1),
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP passes the first callback to the processor and renders the outcome.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusConflict)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	// The code is single use, so a dropped browser connection must not cancel the token request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), exchangeTimeout)
	defer cancel()

	state, err := h.processor.HandleCallback(ctx, r.URL.Query())
	h.Send(CallbackResult{State: state, Err: err})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, resultPage, "Authorization Failed", "#E22134", "&#10007; Authorization Failed", html.EscapeString(err.Error()))
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, resultPage, "Authorization Successful", "#1DB954", "&#10003; Authorization Successful", "You can close this window and return to the terminal.")
}

// Send publishes the result (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns a channel that receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const resultPage = `<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: %s; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`
