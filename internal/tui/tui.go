// Package tui is the interactive terminal front end of the identity client.
// It lets a user sign up or log in and then inspect the session: the
// profile, the token expiry, a token refresh and copying the token to the
// clipboard for use with the non-interactive commands.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

const (
	pageMenu    = "menu"
	pageLogin   = "login"
	pageSignup  = "signup"
	pageProfile = "profile"
)

type TUI struct {
	server    adapter.ServerAdapter
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(server adapter.ServerAdapter, buildInfo models.AppBuildInfo, logger *logger.Logger) *TUI {
	return &TUI{server: server, buildInfo: buildInfo, logger: logger}
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	root := NewRootModel(t.pages(ctx), pageMenu, t.buildInfo)

	finalModel, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		t.logger.Err(err).Str("func", "*TUI.Run").Msg("terminal ui stopped with error")
		return err
	}

	if _, ok := finalModel.(RootModel); !ok {
		return tea.ErrProgramKilled
	}
	return nil
}

func (t *TUI) pages(ctx context.Context) map[string]tea.Model {
	return map[string]tea.Model{
		pageMenu:    NewMenuModel(),
		pageLogin:   NewLoginModel(ctx, t.server),
		pageSignup:  NewSignupModel(ctx, t.server),
		pageProfile: NewProfileModel(ctx, t.server),
	}
}
