package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/auth"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/session"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	WaitingView
	HomeView
)

const (
	libraryPageSize = 50
	tickInterval    = 30 * time.Second
)

// SessionSource is the read side of the session store.
type SessionSource interface {
	Snapshot() session.Session
	Subscribe() (<-chan session.Session, func())
	Now() time.Time
}

// Flow is the subset of the auth controller the view drives.
type Flow interface {
	State() auth.State
	LoginAsGuest(ctx context.Context) (auth.State, error)
	Logout()
	Reset() auth.State
}

// LoginFunc starts the browser login and returns the authorization URL.
type LoginFunc func(ctx context.Context) (string, error)

// Library fetches the lists shown on the home view.
type Library interface {
	MyPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error)
	NewReleases(ctx context.Context, limit, offset int) (*models.Page[models.Album], error)
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	sessions    SessionSource
	flow        Flow
	login       LoginFunc
	library     Library
	updates     <-chan session.Session
	unsubscribe func()
	session     session.Session
	authURL     string
	err         error
	width       int
	height      int
	items       list.Model
	loaded      bool
	fetching    bool
	help        help.Model
	keys        keyMap
}

// NewModel creates a Model subscribed to sessions. Call [Model.Close] when the program exits.
func NewModel(ctx context.Context, sessions SessionSource, flow Flow, login LoginFunc, library Library) *Model {
	updates, unsubscribe := sessions.Subscribe()
	items := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	items.SetShowHelp(false)
	return &Model{
		ctx:         ctx,
		sessions:    sessions,
		flow:        flow,
		login:       login,
		library:     library,
		updates:     updates,
		unsubscribe: unsubscribe,
		session:     sessions.Snapshot(),
		items:       items,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Close releases the session subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForSession(), tick()}
	if m.currentView() == HomeView {
		cmds = append(cmds, m.fetchLibrary())
	}
	return tea.Batch(cmds...)
}

// currentView derives the screen from the latest snapshot and the flow state.
func (m *Model) currentView() ViewState {
	if m.session.HasValidTokenAt(m.sessions.Now()) {
		return HomeView
	}
	switch m.flow.State() {
	case auth.AwaitingProviderRedirect, auth.AwaitingCallback, auth.ExchangingCode, auth.GuestRequested:
		return WaitingView
	default:
		return LoginView
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.items.SetSize(msg.Width-4, msg.Height-10)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.items.FilterState() != list.Filtering {
			return m, tea.Quit
		}
		switch m.currentView() {
		case LoginView:
			return m.handleLoginKeys(msg)
		case WaitingView:
			return m.handleWaitingKeys(msg)
		case HomeView:
			return m.handleHomeKeys(msg)
		}
	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionUpdated:
		m.session = msg.data.(session.Session)
		cmds := []tea.Cmd{m.waitForSession()}
		if m.currentView() == HomeView {
			if !m.loaded && !m.fetching {
				cmds = append(cmds, m.fetchLibrary())
			}
		} else {
			m.resetLibrary()
		}
		return m, tea.Batch(cmds...)
	case MsgLoginStarted:
		data := msg.data.(loginStarted)
		m.authURL = data.url
		m.err = data.err
		return m, nil
	case MsgGuestFinished:
		if err, ok := msg.data.(error); ok {
			m.err = err
		}
		return m, nil
	case MsgLibraryFetched:
		data := msg.data.(libraryFetched)
		m.fetching = false
		m.loaded = true
		m.err = data.err
		m.items.Title = data.title
		m.items.SetItems(data.items)
		return m, nil
	case MsgTick:
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.login):
		m.err = nil
		return m, m.startLogin()
	case key.Matches(msg, m.keys.guest):
		m.err = nil
		return m, m.startGuest()
	case key.Matches(msg, m.keys.retry):
		m.err = nil
		m.authURL = ""
		m.flow.Reset()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleWaitingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.logout) {
		m.authURL = ""
		m.flow.Logout()
	}
	return m, nil
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.items.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.logout):
			m.authURL = ""
			m.flow.Logout()
			return m, nil
		case key.Matches(msg, m.keys.refresh):
			if m.fetching {
				return m, nil
			}
			return m, m.fetchLibrary()
		}
	}
	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m *Model) resetLibrary() {
	m.loaded = false
	m.items.SetItems(nil)
}

func (m *Model) waitForSession() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return sessionUpdatedMsg(s)
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg() })
}

func (m *Model) startLogin() tea.Cmd {
	return func() tea.Msg {
		u, err := m.login(m.ctx)
		return loginStartedMsg(u, err)
	}
}

func (m *Model) startGuest() tea.Cmd {
	return func() tea.Msg {
		_, err := m.flow.LoginAsGuest(m.ctx)
		return guestFinishedMsg(err)
	}
}

// fetchLibrary loads playlists for user sessions and new releases for guest sessions.
func (m *Model) fetchLibrary() tea.Cmd {
	m.fetching = true
	guest := m.session.IsGuestMode
	return func() tea.Msg {
		if guest {
			page, err := m.library.NewReleases(m.ctx, libraryPageSize, 0)
			if err != nil {
				return libraryFetchedMsg("New Releases", nil, err)
			}
			items := make([]list.Item, len(page.Items))
			for i, a := range page.Items {
				items[i] = albumItem{album: a}
			}
			return libraryFetchedMsg("New Releases", items, nil)
		}

		page, err := m.library.MyPlaylists(m.ctx, libraryPageSize, 0)
		if err != nil {
			return libraryFetchedMsg("Your Playlists", nil, err)
		}
		items := make([]list.Item, len(page.Items))
		for i, p := range page.Items {
			items[i] = playlistItem{playlist: p}
		}
		return libraryFetchedMsg("Your Playlists", items, nil)
	}
}

func (m *Model) View() string {
	switch m.currentView() {
	case LoginView:
		return m.renderLogin()
	case WaitingView:
		return m.renderWaiting()
	case HomeView:
		return m.renderHome()
	default:
		return ""
	}
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Spotdash"))
	b.WriteString("\n")

	if msg := m.errorMessage(); msg != "" {
		b.WriteString(styles.err.Render("✗ " + msg))
		b.WriteString("\n\n")
		b.WriteString(styles.help.Render("l: log in • g: guest • r: try again • q: quit"))
		return b.String()
	}

	b.WriteString("Sign in with Spotify to see your playlists, or continue as a guest.\n\n")
	b.WriteString(styles.help.Render("l: log in • g: guest • q: quit"))
	return b.String()
}

func (m *Model) renderWaiting() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Spotdash"))
	b.WriteString("\n")

	switch m.flow.State() {
	case auth.ExchangingCode:
		b.WriteString(styles.warn.Render("Completing sign in..."))
	case auth.GuestRequested:
		b.WriteString(styles.warn.Render("Starting guest session..."))
	default:
		b.WriteString(styles.warn.Render("Waiting for Spotify to redirect back..."))
		if m.authURL != "" {
			b.WriteString("\n\nIf the browser did not open, visit:\n")
			b.WriteString(m.authURL)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(styles.help.Render("o: cancel • q: quit"))
	return b.String()
}

func (m *Model) renderHome() string {
	var b strings.Builder

	name := "Loading profile..."
	if m.session.Identity != nil {
		name = m.session.Identity.Name()
	}
	minutes := m.session.MinutesUntilExpirationAt(m.sessions.Now())
	header := fmt.Sprintf("%s • token expires in %d min", name, minutes)
	if m.session.IsGuestMode {
		header += " • guest"
	}
	b.WriteString(styles.header.Render(header))
	b.WriteString("\n")

	if msg := m.errorMessage(); msg != "" {
		b.WriteString(styles.err.Render("✗ " + msg))
		b.WriteString("\n")
	}

	switch {
	case m.fetching && !m.loaded:
		b.WriteString(styles.warn.Render("Loading..."))
	case len(m.items.Items()) == 0:
		b.WriteString(styles.help.Render("Nothing to show yet."))
	default:
		b.WriteString(m.items.View())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// errorMessage prefers the local error over the session's last error.
func (m *Model) errorMessage() string {
	if m.err != nil {
		return m.err.Error()
	}
	return m.session.LastError
}
