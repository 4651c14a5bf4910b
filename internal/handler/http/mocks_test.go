package http

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// ---- Mock: CredentialService ----

type mockCredentialSvc struct {
	signupFn          func(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error)
	loginFn           func(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	refreshTokenFn    func(ctx context.Context, userID string, scope models.Scope) (models.TokenResponse, error)
	changePasswordFn  func(ctx context.Context, req models.ChangePasswordRequest) error
	resetPasswordFn   func(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error)
	recoverPasswordFn func(ctx context.Context, req models.RecoverPasswordRequest) error
	parseTokenFn      func(ctx context.Context, token string) (models.Token, error)
}

func (m *mockCredentialSvc) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, req)
	}
	return models.AuthResponse{}, nil
}

func (m *mockCredentialSvc) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return models.AuthResponse{}, nil
}

func (m *mockCredentialSvc) RefreshToken(ctx context.Context, userID string, scope models.Scope) (models.TokenResponse, error) {
	if m.refreshTokenFn != nil {
		return m.refreshTokenFn(ctx, userID, scope)
	}
	return models.TokenResponse{}, nil
}

func (m *mockCredentialSvc) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, req)
	}
	return nil
}

func (m *mockCredentialSvc) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error) {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, req)
	}
	return models.ResetPasswordAck, nil
}

func (m *mockCredentialSvc) RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error {
	if m.recoverPasswordFn != nil {
		return m.recoverPasswordFn(ctx, req)
	}
	return nil
}

func (m *mockCredentialSvc) ParseToken(ctx context.Context, token string) (models.Token, error) {
	if m.parseTokenFn != nil {
		return m.parseTokenFn(ctx, token)
	}
	return models.Token{}, service.ErrTokenIsExpiredOrInvalid
}

// ---- Mock: UserService ----

type mockUserSvc struct {
	profileFn       func(ctx context.Context, userID string) (models.UserProfile, error)
	updateProfileFn func(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error)
	findUserFn      func(ctx context.Context, userID string) (models.UserProfile, error)
}

func (m *mockUserSvc) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, userID)
	}
	return models.UserProfile{ID: userID}, nil
}

func (m *mockUserSvc) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, req)
	}
	return models.UserProfile{ID: req.UserID, Username: req.Username, Name: req.Name}, nil
}

func (m *mockUserSvc) FindUser(ctx context.Context, userID string) (models.UserProfile, error) {
	if m.findUserFn != nil {
		return m.findUserFn(ctx, userID)
	}
	return models.UserProfile{ID: userID}, nil
}

// ---- Mock: AppInfoService ----

type mockAppInfoSvc struct {
	version string
}

func (m *mockAppInfoSvc) GetAppVersion(_ context.Context) string {
	return m.version
}

func (m *mockAppInfoSvc) GetBuildInfo(_ context.Context) models.AppBuildInfo {
	return models.AppBuildInfo{Version: m.version, Date: "2026-03-01", Commit: "abc123"}
}

// ---- Mock: Limiter ----

type mockLimiter struct {
	allowFn func(ctx context.Context, key string) (bool, error)
	keys    []string
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	m.keys = append(m.keys, key)
	if m.allowFn != nil {
		return m.allowFn(ctx, key)
	}
	return true, nil
}

func (m *mockLimiter) Close() error { return nil }

// ---- Helpers ----

// tokenFor builds what ParseToken returns for a verified token.
func tokenFor(userID string, scope models.Scope) models.Token {
	return models.Token{
		UserID:        userID,
		SessionClaims: models.SessionClaims{Scope: scope},
	}
}

func newTestHandler(creds *mockCredentialSvc, users *mockUserSvc, lim *mockLimiter) *Handler {
	if creds == nil {
		creds = &mockCredentialSvc{}
	}
	if users == nil {
		users = &mockUserSvc{}
	}
	if lim == nil {
		lim = &mockLimiter{}
	}

	return &Handler{
		services: &service.Services{
			CredentialService: creds,
			UserService:       users,
			AppInfoService:    &mockAppInfoSvc{version: "test-version"},
		},
		limiter:  lim,
		gatherer: prometheus.NewRegistry(),
		logger:   logger.Nop(),
	}
}

// injectNopLogger puts a nop logger into the request context.
func injectNopLogger(r *http.Request) *http.Request {
	nop := logger.Nop()
	return r.WithContext(nop.Logger.WithContext(r.Context()))
}
