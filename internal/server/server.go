// package server contains middleware, handlers and the listener for the OAuth callback
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Listener is a running HTTP server bound to a local address.
type Listener struct {
	srv    *http.Server
	ln     net.Listener
	done   chan error
	logger *log.Logger
}

// Listen binds addr and serves h in the background.
func Listen(addr string, h http.Handler, logger *log.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		srv:    &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		ln:     ln,
		done:   make(chan error, 1),
		logger: logger,
	}

	go func() {
		err := l.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		l.done <- err
	}()

	logger.Debug("callback listener started", "addr", ln.Addr().String())
	return l, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (l *Listener) Shutdown(ctx context.Context) error {
	if err := l.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down listener: %w", err)
	}
	err := <-l.done
	l.logger.Debug("callback listener stopped")
	return err
}
