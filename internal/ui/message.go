package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionUpdated MsgKind = iota
	MsgLoginStarted
	MsgGuestFinished
	MsgLibraryFetched
	MsgTick
)

type loginStarted struct {
	url string
	err error
}

type libraryFetched struct {
	items []list.Item
	title string
	err   error
}

// sessionUpdatedMsg is the constructor for [MsgSessionUpdated]
func sessionUpdatedMsg(s session.Session) Msg {
	return Msg{kind: MsgSessionUpdated, data: s}
}

// loginStartedMsg is the constructor for [MsgLoginStarted]
func loginStartedMsg(url string, err error) Msg {
	return Msg{kind: MsgLoginStarted, data: loginStarted{url, err}}
}

// guestFinishedMsg is the constructor for [MsgGuestFinished]
func guestFinishedMsg(err error) Msg {
	return Msg{kind: MsgGuestFinished, data: err}
}

// libraryFetchedMsg is the constructor for [MsgLibraryFetched]
func libraryFetchedMsg(title string, items []list.Item, err error) Msg {
	return Msg{kind: MsgLibraryFetched, data: libraryFetched{items: items, title: title, err: err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg() Msg {
	return Msg{kind: MsgTick}
}
