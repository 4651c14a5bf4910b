package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and request
// timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpServerAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter].
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Signup implements [ServerAdapter]. It POSTs to /api/user/signup.
func (h *httpServerAdapter) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	var auth models.AuthResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&auth).
		Post("/api/user/signup")
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("signup request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuthResponse{}, err
	}

	h.SetToken(auth.Token)
	return auth, nil
}

// Login implements [ServerAdapter]. It POSTs to /api/user/login. The token is
// taken from the Authorization response header and falls back to the body.
func (h *httpServerAdapter) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var auth models.AuthResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&auth).
		Post("/api/user/login")
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuthResponse{}, err
	}

	if token, parseErr := utils.ParseBearerToken(resp.Header().Get("Authorization")); parseErr == nil {
		auth.Token = token
	}

	h.SetToken(auth.Token)
	return auth, nil
}

// RefreshToken implements [ServerAdapter]. It POSTs to /api/user/refresh-token.
func (h *httpServerAdapter) RefreshToken(ctx context.Context) (models.TokenResponse, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.TokenResponse{}, err
	}

	var token models.TokenResponse
	resp, err := req.SetResult(&token).Post("/api/user/refresh-token")
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("refresh token request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenResponse{}, err
	}

	h.SetToken(token.Token)
	return token, nil
}

// ChangePassword implements [ServerAdapter]. It POSTs to
// /api/user/change-password.
func (h *httpServerAdapter) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := r.SetBody(req).Post("/api/user/change-password")
	if err != nil {
		return fmt.Errorf("change password request: %w", err)
	}

	return mapHTTPError(resp)
}

// ResetPassword implements [ServerAdapter]. It POSTs to
// /api/user/reset-password.
func (h *httpServerAdapter) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error) {
	var ack models.Ack

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&ack).
		Post("/api/user/reset-password")
	if err != nil {
		return models.Ack{}, fmt.Errorf("reset password request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Ack{}, err
	}

	return ack, nil
}

// RecoverPassword implements [ServerAdapter]. It POSTs the new password to
// /api/user/recover-password/{token}.
func (h *httpServerAdapter) RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("token", req.Token).
		SetBody(req).
		Post("/api/user/recover-password/{token}")
	if err != nil {
		return fmt.Errorf("recover password request: %w", err)
	}

	return mapHTTPError(resp)
}

// Profile implements [ServerAdapter]. It GETs /api/user/me.
func (h *httpServerAdapter) Profile(ctx context.Context) (models.UserProfile, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	var profile models.UserProfile
	resp, err := req.SetResult(&profile).Get("/api/user/me")
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("profile request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserProfile{}, err
	}

	return profile, nil
}

// UpdateProfile implements [ServerAdapter]. It POSTs to /api/user/me.
func (h *httpServerAdapter) UpdateProfile(ctx context.Context, update models.UpdateProfileRequest) (models.UserProfile, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	var profile models.UserProfile
	resp, err := req.SetBody(update).SetResult(&profile).Post("/api/user/me")
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("update profile request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserProfile{}, err
	}

	return profile, nil
}

// FindUser implements [ServerAdapter]. It GETs /api/users/{id}.
func (h *httpServerAdapter) FindUser(ctx context.Context, userID string) (models.UserProfile, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	var profile models.UserProfile
	resp, err := req.SetPathParam("id", userID).SetResult(&profile).Get("/api/users/{id}")
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("find user request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserProfile{}, err
	}

	return profile, nil
}

// Version implements [ServerAdapter]. It GETs /api/version/.
func (h *httpServerAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/api/version/")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return resp.String(), nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) (*resty.Request, error) {
	token := h.Token()
	if token == "" {
		return nil, ErrNoToken
	}

	return h.client.R().
		SetContext(ctx).
		SetAuthToken(token), nil
}
