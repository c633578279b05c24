package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	login   key.Binding
	guest   key.Binding
	retry   key.Binding
	refresh key.Binding
	logout  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		login:   key.NewBinding(key.WithKeys("l", "enter"), key.WithHelp("l", "log in")),
		guest:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "guest")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		logout:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.refresh, k.logout, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.login, k.guest, k.retry},
		{k.refresh, k.logout, k.quit},
	}
}
