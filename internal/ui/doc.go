// Package ui implements the interactive terminal view using bubbletea's Elm architecture.
//
// The view is driven by the session store: the [Model] subscribes to [session.Store] snapshots
// and picks one of three screens from the latest snapshot and the auth flow state:
//  1. [LoginView] : Not signed in; start the browser login, continue as guest, or retry after an error
//  2. [WaitingView] : Browser opened, waiting for the provider to redirect back
//  3. [HomeView] : Signed in; identity header, token countdown, and the user's playlists
//     (or new releases for guest sessions)
//
// Messages travel through the [Msg] union type. Keyboard navigation uses vim-style bindings
// (j/k, enter, l, g, r, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
