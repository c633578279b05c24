package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization flow errors
	ErrProviderDenied        = fmt.Errorf("provider denied authorization")
	ErrMissingCode           = fmt.Errorf("missing authorization code")
	ErrMissingVerifier       = fmt.Errorf("missing or undecodable PKCE verifier")
	ErrTokenExchangeRejected = fmt.Errorf("token exchange rejected")
	ErrTransportFailure      = fmt.Errorf("transport failure")
	ErrAlreadyAuthenticated  = fmt.Errorf("already authenticated")
	ErrCallbackIgnored       = fmt.Errorf("callback already handled")
	ErrFlowInProgress        = fmt.Errorf("authorization already in progress")
	ErrTimeout               = fmt.Errorf("operation timed out")

	// Resource errors
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrAPIRequest      = fmt.Errorf("API request failed")

	// Storage errors
	ErrKeyNotFound = fmt.Errorf("key not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
