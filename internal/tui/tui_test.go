package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/internal/mock"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func keyRune(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

// collectMsgs runs cmd and flattens batches into a message list.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func testAuth() models.AuthResponse {
	return models.AuthResponse{
		User: models.UserProfile{
			ID:       "0b6c5c64-5a9d-4ec1-9d84-6a2a0e36f3f1",
			Username: "alice",
			Email:    "alice@example.com",
			Scope:    models.ScopeUser,
		},
		Token:     "session-token",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newRoot(server adapter.ServerAdapter) RootModel {
	ctx := context.Background()
	return NewRootModel(map[string]tea.Model{
		pageMenu:    NewMenuModel(),
		pageLogin:   NewLoginModel(ctx, server),
		pageSignup:  NewSignupModel(ctx, server),
		pageProfile: NewProfileModel(ctx, server),
	}, pageMenu, models.NewAppBuildInfo("1.2.3", "2026-01-01", "abc123"))
}

// ─────────────────────────────────────────────
// RootModel
// ─────────────────────────────────────────────

func TestRootModel_CtrlCQuits(t *testing.T) {
	root := newRoot(nil)

	updated, cmd := root.Update(keyCtrlC)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, updated.(RootModel).quitByUser)
}

func TestRootModel_BuildInfoToggle(t *testing.T) {
	root := newRoot(nil)

	updated, _ := root.Update(keyRune("v"))
	root = updated.(RootModel)
	assert.True(t, root.showBuildInfo)
	assert.Contains(t, root.View(), "1.2.3")
	assert.Contains(t, root.View(), "abc123")

	updated, _ = root.Update(keyEsc)
	root = updated.(RootModel)
	assert.False(t, root.showBuildInfo)
}

func TestRootModel_BuildInfoIgnoredOutsideMenu(t *testing.T) {
	root := newRoot(nil)

	updated, _ := root.Update(NavigateTo{Page: pageLogin})
	root = updated.(RootModel)
	require.Equal(t, pageLogin, root.Page())

	updated, _ = root.Update(keyRune("v"))
	assert.False(t, updated.(RootModel).showBuildInfo)
}

func TestRootModel_NavigateUnknownPageKeepsCurrent(t *testing.T) {
	root := newRoot(nil)

	updated, cmd := root.Update(NavigateTo{Page: "nowhere"})

	assert.Nil(t, cmd)
	assert.Equal(t, pageMenu, updated.(RootModel).Page())
}

func TestRootModel_MenuNavigation(t *testing.T) {
	root := newRoot(nil)

	updated, _ := root.Update(keyRune("j"))
	root = updated.(RootModel)
	updated, cmd := root.Update(keyEnter)
	root = updated.(RootModel)

	msgs := collectMsgs(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, NavigateTo{Page: pageSignup}, msgs[0])

	updated, _ = root.Update(msgs[0])
	assert.Equal(t, pageSignup, updated.(RootModel).Page())
}

func TestRootModel_NavigateDeliversPayload(t *testing.T) {
	root := newRoot(nil)
	auth := testAuth()

	updated, cmd := root.Update(NavigateTo{Page: pageProfile, Payload: sessionStarted{auth: auth}})
	root = updated.(RootModel)
	require.Equal(t, pageProfile, root.Page())

	for _, msg := range collectMsgs(cmd) {
		updated, _ = root.Update(msg)
		root = updated.(RootModel)
	}

	view := root.View()
	assert.Contains(t, view, "alice@example.com")
	assert.Contains(t, view, auth.User.ID)
}

// ─────────────────────────────────────────────
// LoginModel
// ─────────────────────────────────────────────

func TestLoginModel_RequiresFields(t *testing.T) {
	m := NewLoginModel(context.Background(), nil)

	_, cmd := m.Update(keyEnter)

	assert.Nil(t, cmd)
	assert.False(t, m.submitting)
	assert.Contains(t, m.View(), "username and password are required")
}

func TestLoginModel_TabMovesFocus(t *testing.T) {
	m := NewLoginModel(context.Background(), nil)

	m.Update(keyTab)
	assert.Equal(t, 1, m.form.focus)
	m.Update(keyTab)
	assert.Equal(t, 0, m.form.focus)
}

func TestLoginModel_SubmitSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	auth := testAuth()

	server.EXPECT().
		Login(gomock.Any(), models.LoginRequest{Username: "alice", Password: "Secret#123"}).
		Return(auth, nil)

	m := NewLoginModel(context.Background(), server)
	m.form.inputs[0].SetValue("  alice ")
	m.form.inputs[1].SetValue("Secret#123")

	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	result := cmd()
	require.IsType(t, LoginResult{}, result)

	_, cmd = m.Update(result)
	require.NotNil(t, cmd)
	assert.False(t, m.submitting)
	assert.Empty(t, m.form.value(0))
	assert.Equal(t, NavigateTo{Page: pageProfile, Payload: sessionStarted{auth: auth}}, cmd())
}

func TestLoginModel_SubmitError(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)

	server.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(models.AuthResponse{}, fmt.Errorf("%w: invalid credentials", adapter.ErrUnauthorized))

	m := NewLoginModel(context.Background(), server)
	m.form.inputs[0].SetValue("alice")
	m.form.inputs[1].SetValue("wrong")

	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)

	_, cmd = m.Update(cmd())
	assert.Nil(t, cmd)
	assert.False(t, m.submitting)
	assert.Contains(t, m.View(), "invalid credentials")
}

func TestLoginModel_IgnoresEnterWhileSubmitting(t *testing.T) {
	m := NewLoginModel(context.Background(), nil)
	m.form.inputs[0].SetValue("alice")
	m.form.inputs[1].SetValue("pw")
	m.submitting = true

	_, cmd := m.Update(keyEnter)

	assert.Nil(t, cmd)
}

// ─────────────────────────────────────────────
// SignupModel
// ─────────────────────────────────────────────

func TestSignupModel_PasswordMismatch(t *testing.T) {
	m := NewSignupModel(context.Background(), nil)
	m.form.inputs[signupUsername].SetValue("alice")
	m.form.inputs[signupEmail].SetValue("alice@example.com")
	m.form.inputs[signupPassword].SetValue("Secret#123")
	m.form.inputs[signupRepeat].SetValue("Secret#124")

	_, cmd := m.Update(keyEnter)

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "passwords do not match")
}

func TestSignupModel_RequiresFields(t *testing.T) {
	m := NewSignupModel(context.Background(), nil)
	m.form.inputs[signupUsername].SetValue("alice")

	_, cmd := m.Update(keyEnter)

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "username, email and password are required")
}

func TestSignupModel_SubmitSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	auth := testAuth()

	server.EXPECT().
		Signup(gomock.Any(), models.SignupRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Name:     "Alice",
			Password: "Secret#123",
		}).
		Return(auth, nil)

	m := NewSignupModel(context.Background(), server)
	m.form.inputs[signupUsername].SetValue("alice")
	m.form.inputs[signupEmail].SetValue("alice@example.com")
	m.form.inputs[signupName].SetValue("Alice")
	m.form.inputs[signupPassword].SetValue("Secret#123")
	m.form.inputs[signupRepeat].SetValue("Secret#123")

	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)

	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateTo{Page: pageProfile, Payload: sessionStarted{auth: auth}}, cmd())
}

func TestSignupModel_ConflictShown(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)

	server.EXPECT().
		Signup(gomock.Any(), gomock.Any()).
		Return(models.AuthResponse{}, fmt.Errorf("%w: username already taken", adapter.ErrConflict))

	m := NewSignupModel(context.Background(), server)
	m.form.inputs[signupUsername].SetValue("alice")
	m.form.inputs[signupEmail].SetValue("alice@example.com")
	m.form.inputs[signupPassword].SetValue("Secret#123")
	m.form.inputs[signupRepeat].SetValue("Secret#123")

	_, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Contains(t, m.View(), "username already taken")
}

// ─────────────────────────────────────────────
// ProfileModel
// ─────────────────────────────────────────────

func TestProfileModel_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	expires := time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC)

	server.EXPECT().
		RefreshToken(gomock.Any()).
		Return(models.TokenResponse{Token: "fresh", ExpiresAt: expires}, nil)

	m := NewProfileModel(context.Background(), server)
	m.Update(sessionStarted{auth: testAuth()})

	_, cmd := m.Update(keyRune("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	m.Update(cmd())

	assert.False(t, m.busy)
	assert.Equal(t, expires, m.expiresAt)
	assert.Contains(t, m.View(), "token refreshed")
}

func TestProfileModel_BusyIgnoresKeys(t *testing.T) {
	m := NewProfileModel(context.Background(), nil)
	m.busy = true

	_, cmd := m.Update(keyRune("r"))

	assert.Nil(t, cmd)
}

func TestProfileModel_ReloadProfileError(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)

	server.EXPECT().
		Profile(gomock.Any()).
		Return(models.UserProfile{}, fmt.Errorf("%w: too many", adapter.ErrTooManyRequests))

	m := NewProfileModel(context.Background(), server)
	m.Update(sessionStarted{auth: testAuth()})

	_, cmd := m.Update(keyRune("p"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Contains(t, m.View(), "too many attempts, try again later")
	assert.Equal(t, "alice", m.profile.Username)
}

func TestProfileModel_CopyToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	server.EXPECT().Token().Return("session-token")

	var copied string
	m := NewProfileModel(context.Background(), server)
	m.copy = func(text string) error {
		copied = text
		return nil
	}

	_, cmd := m.Update(keyRune("c"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, "session-token", copied)
	assert.Contains(t, m.View(), "token copied to clipboard")
}

func TestProfileModel_CopyWithoutToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	server.EXPECT().Token().Return("")

	m := NewProfileModel(context.Background(), server)
	m.copy = func(string) error {
		t.Fatal("clipboard must not be used without a token")
		return nil
	}

	_, cmd := m.Update(keyRune("c"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Contains(t, m.View(), "copy to clipboard")
}

func TestProfileModel_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	server.EXPECT().SetToken("")

	m := NewProfileModel(context.Background(), server)
	m.Update(sessionStarted{auth: testAuth()})

	_, cmd := m.Update(keyRune("l"))
	require.NotNil(t, cmd)

	assert.Equal(t, NavigateTo{Page: pageMenu, Payload: loggedOut{username: "alice"}}, cmd())
	assert.Empty(t, m.profile.ID)
	assert.True(t, m.expiresAt.IsZero())
}

func TestMenuModel_LoggedOutNotice(t *testing.T) {
	m := NewMenuModel()

	m.Update(loggedOut{username: "alice"})

	assert.Contains(t, m.View(), "alice logged out")
}

// ─────────────────────────────────────────────
// humanizeError
// ─────────────────────────────────────────────

func TestHumanizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "rate limited", err: fmt.Errorf("%w: slow down", adapter.ErrTooManyRequests), want: "too many attempts, try again later"},
		{name: "no token", err: adapter.ErrNoToken, want: "not logged in"},
		{name: "unavailable", err: adapter.ErrServiceUnavailable, want: "server is unavailable"},
		{name: "network", err: errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"), want: "network is down or server is unavailable"},
		{name: "passthrough", err: errors.New("conflict: email already taken"), want: "conflict: email already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeError(tt.err))
		})
	}
}
