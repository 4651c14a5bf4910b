// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// LoginModel is the Bubble Tea model for the login screen. It renders two text inputs
// (username or email, and password) and dispatches an async login command on form
// submission. On success the session is handed to the profile page.
type LoginModel struct {
	ctx    context.Context
	server adapter.ServerAdapter

	form       inputForm
	submitting bool
	errMsg     string
}

func NewLoginModel(ctx context.Context, server adapter.ServerAdapter) *LoginModel {
	return &LoginModel{
		ctx:    ctx,
		server: server,
		form: newInputForm(
			field{label: "Username or email", placeholder: "username", charLimit: 254},
			field{label: "Password", placeholder: "password", charLimit: 256, secret: true},
		),
	}
}

// Init implements [tea.Model]. Starts the cursor-blink animation for the active input.
func (m *LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [LoginResult]  clears submitting state; on error, populates errMsg,
//     on success navigates to the profile page.
//   - esc            cancels and navigates back to the menu.
//   - tab/shift+tab  moves focus between inputs.
//   - enter          validates inputs and dispatches the async login command.
//
// All other key events are forwarded to the focused input widget.
func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(LoginResult); ok {
		m.submitting = false
		if result.Err != nil {
			m.errMsg = humanizeError(result.Err)
			return m, nil
		}

		m.errMsg = ""
		m.form.reset()
		return m, func() tea.Msg {
			return NavigateTo{Page: pageProfile, Payload: sessionStarted{auth: result.Auth}}
		}
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMatches(keyMsg, keys.esc):
			m.submitting = false
			m.errMsg = ""
			return m, func() tea.Msg { return NavigateTo{Page: pageMenu} }
		case keyMatches(keyMsg, keys.tab):
			m.form.next()
			return m, nil
		case keyMatches(keyMsg, keys.backtab):
			m.form.prev()
			return m, nil
		case keyMatches(keyMsg, keys.enter):
			if m.submitting {
				return m, nil
			}

			username := strings.TrimSpace(m.form.value(0))
			password := m.form.value(1)
			if username == "" || password == "" {
				m.errMsg = "username and password are required"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdLogin(username, password)
		}
	}

	return m, m.form.update(msg)
}

func (m *LoginModel) View() string {
	var b strings.Builder
	b.WriteString(m.form.view())
	b.WriteString("\n")

	if m.submitting {
		b.WriteString("\n[Logging in...]\n")
	} else {
		b.WriteString("\n[Log in]\n")
	}
	renderFeedback(&b, "", m.errMsg)

	return renderPage("LOG IN", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *LoginModel) cmdLogin(username, password string) tea.Cmd {
	ctx := m.ctx
	server := m.server

	return func() tea.Msg {
		auth, err := server.Login(ctx, models.LoginRequest{
			Username: username,
			Password: password,
		})
		return LoginResult{Err: err, Auth: auth}
	}
}
