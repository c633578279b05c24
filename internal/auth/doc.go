// Package auth drives the OAuth2 authorization code flow with PKCE, plus the client credentials
// shortcut used for guest sessions.
//
// A [Controller] moves through the [State] machine below and writes every outcome into a
// [session.Store]:
//
//	Unauthenticated -> AwaitingProviderRedirect -> AwaitingCallback -> ExchangingCode -> Authenticated
//	Unauthenticated -> GuestRequested -> GuestAuthenticated
//	any failure -> Error -> (Reset) -> Unauthenticated
//
// The callback is processed at most once: the transition into ExchangingCode happens under the
// controller's lock, so concurrent or repeated callbacks issue a single token request.
package auth
