package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// NavigateTo switches the active page. A non-nil Payload is delivered to the
// new page right after the switch.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

type LoginResult struct {
	Err  error
	Auth models.AuthResponse
}

type SignupResult struct {
	Err  error
	Auth models.AuthResponse
}

// sessionStarted hands a fresh session over to the profile page.
type sessionStarted struct {
	auth models.AuthResponse
}

// loggedOut is delivered to the menu after the session token was dropped.
type loggedOut struct {
	username string
}

type profileLoadedMsg struct {
	profile models.UserProfile
	err     error
}

type tokenRefreshedMsg struct {
	token models.TokenResponse
	err   error
}

type copiedMsg struct {
	err error
}
