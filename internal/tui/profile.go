package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// ProfileModel shows the account behind the current session.
type ProfileModel struct {
	ctx    context.Context
	server adapter.ServerAdapter
	copy   func(text string) error

	profile   models.UserProfile
	expiresAt time.Time
	busy      bool
	status    string
	errMsg    string
}

func NewProfileModel(ctx context.Context, server adapter.ServerAdapter) *ProfileModel {
	return &ProfileModel{
		ctx:    ctx,
		server: server,
		copy:   clipboard.WriteAll,
	}
}

func (m *ProfileModel) Init() tea.Cmd {
	return nil
}

func (m *ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStarted:
		m.profile = msg.auth.User
		m.expiresAt = msg.auth.ExpiresAt
		m.busy = false
		m.status = ""
		m.errMsg = ""
		return m, nil

	case profileLoadedMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.profile = msg.profile
		m.errMsg = ""
		m.status = "profile reloaded"
		return m, nil

	case tokenRefreshedMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.expiresAt = msg.token.ExpiresAt
		m.errMsg = ""
		m.status = "token refreshed"
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.errMsg = "copy to clipboard: " + msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.status = "token copied to clipboard"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *ProfileModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, keys.logout):
		username := m.profile.Username
		m.server.SetToken("")
		m.profile = models.UserProfile{}
		m.expiresAt = time.Time{}
		m.status = ""
		m.errMsg = ""
		return m, func() tea.Msg {
			return NavigateTo{Page: pageMenu, Payload: loggedOut{username: username}}
		}
	case m.busy:
		return m, nil
	case keyMatches(msg, keys.refresh):
		m.busy = true
		return m, m.cmdRefresh()
	case keyMatches(msg, keys.reload):
		m.busy = true
		return m, m.cmdReload()
	case keyMatches(msg, keys.copy):
		return m, m.cmdCopy()
	}
	return m, nil
}

func (m *ProfileModel) View() string {
	expires := "-"
	if !m.expiresAt.IsZero() {
		expires = m.expiresAt.Local().Format(time.DateTime)
	}
	created := "-"
	if !m.profile.CreatedAt.IsZero() {
		created = m.profile.CreatedAt.Local().Format(time.DateTime)
	}

	var b strings.Builder
	b.WriteString(renderTable([2]string{"Field", "Value"}, [][2]string{
		{"ID", valueOrDash(m.profile.ID)},
		{"Username", valueOrDash(m.profile.Username)},
		{"Email", valueOrDash(m.profile.Email)},
		{"Name", valueOrDash(m.profile.Name)},
		{"Scope", valueOrDash(string(m.profile.Scope))},
		{"Created", created},
		{"Token expires", expires},
	}))
	b.WriteString("\n")
	if m.busy {
		b.WriteString("\n[Working...]\n")
	}
	renderFeedback(&b, m.status, m.errMsg)

	return renderPage("PROFILE", strings.TrimRight(b.String(), "\n"), "r: refresh token │ p: reload profile │ c: copy token │ l: log out")
}

func (m *ProfileModel) cmdRefresh() tea.Cmd {
	ctx := m.ctx
	server := m.server

	return func() tea.Msg {
		token, err := server.RefreshToken(ctx)
		return tokenRefreshedMsg{token: token, err: err}
	}
}

func (m *ProfileModel) cmdReload() tea.Cmd {
	ctx := m.ctx
	server := m.server

	return func() tea.Msg {
		profile, err := server.Profile(ctx)
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m *ProfileModel) cmdCopy() tea.Cmd {
	token := m.server.Token()
	copyFn := m.copy

	return func() tea.Msg {
		if token == "" {
			return copiedMsg{err: adapter.ErrNoToken}
		}
		return copiedMsg{err: copyFn(token)}
	}
}
