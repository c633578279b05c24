// Package server provides the loopback HTTP listener that receives the OAuth2 redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the stock middleware.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /callback").
//
// # Callback Handler
//
// [CallbackHandler] hands the redirect's query parameters to a [CallbackProcessor] (the auth
// controller), renders a result page for the browser and publishes the outcome on a channel
// that the `auth login` command waits on. Only the first request is processed.
//
// # Listener
//
// [Listen] binds the configured host and port and serves until [Listener.Shutdown], which the
// CLI calls once the result arrives or the callback timeout expires.
package server
