package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/models"
)

const (
	signupUsername = iota
	signupEmail
	signupName
	signupPassword
	signupRepeat
)

// SignupModel is the Bubble Tea model for the account creation screen. The
// password is asked twice and compared locally; every other rule (username
// format, email syntax, password policy) is enforced by the server and its
// message is shown as is.
type SignupModel struct {
	ctx    context.Context
	server adapter.ServerAdapter

	form       inputForm
	submitting bool
	errMsg     string
}

func NewSignupModel(ctx context.Context, server adapter.ServerAdapter) *SignupModel {
	return &SignupModel{
		ctx:    ctx,
		server: server,
		form: newInputForm(
			field{label: "Username", placeholder: "username", charLimit: 32},
			field{label: "Email", placeholder: "name@example.com", charLimit: 254},
			field{label: "Name", placeholder: "display name (optional)", charLimit: 128},
			field{label: "Password", placeholder: "password", charLimit: 256, secret: true},
			field{label: "Repeat password", placeholder: "repeat password", charLimit: 256, secret: true},
		),
	}
}

func (m *SignupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SignupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(SignupResult); ok {
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

			req := models.SignupRequest{
				Username: strings.TrimSpace(m.form.value(signupUsername)),
				Email:    strings.TrimSpace(m.form.value(signupEmail)),
				Name:     strings.TrimSpace(m.form.value(signupName)),
				Password: m.form.value(signupPassword),
			}
			if req.Username == "" || req.Email == "" || req.Password == "" {
				m.errMsg = "username, email and password are required"
				return m, nil
			}
			if req.Password != m.form.value(signupRepeat) {
				m.errMsg = "passwords do not match"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdSignup(req)
		}
	}

	return m, m.form.update(msg)
}

func (m *SignupModel) View() string {
	var b strings.Builder
	b.WriteString(m.form.view())
	b.WriteString("\n")

	if m.submitting {
		b.WriteString("\n[Signing up...]\n")
	} else {
		b.WriteString("\n[Sign up]\n")
	}
	renderFeedback(&b, "", m.errMsg)

	return renderPage("SIGN UP", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func (m *SignupModel) cmdSignup(req models.SignupRequest) tea.Cmd {
	ctx := m.ctx
	server := m.server

	return func() tea.Msg {
		auth, err := server.Signup(ctx, req)
		return SignupResult{Err: err, Auth: auth}
	}
}
