package auth

// State is a step of the authorization flow.
type State int

const (
	Unauthenticated State = iota
	AwaitingProviderRedirect
	AwaitingCallback
	ExchangingCode
	Authenticated
	GuestRequested
	GuestAuthenticated
	Error
)

var stateNames = map[State]string{
	Unauthenticated:          "unauthenticated",
	AwaitingProviderRedirect: "awaiting_provider_redirect",
	AwaitingCallback:         "awaiting_callback",
	ExchangingCode:           "exchanging_code",
	Authenticated:            "authenticated",
	GuestRequested:           "guest_requested",
	GuestAuthenticated:       "guest_authenticated",
	Error:                    "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// acceptsCallback reports whether a callback arriving in s should be processed.
func (s State) acceptsCallback() bool {
	switch s {
	case Unauthenticated, AwaitingProviderRedirect, AwaitingCallback:
		return true
	default:
		return false
	}
}

// busy reports whether a network step owned by another call is in flight.
func (s State) busy() bool {
	return s == ExchangingCode || s == GuestRequested
}
