// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the identity server.
//
// The primary abstraction is [ServerAdapter], which decouples the command-line
// client from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-identity-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the identity
// server. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token that will be attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Signup creates an account. On success the returned session token is
	// stored via SetToken.
	Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error)

	// Login authenticates by username or email. On success the returned
	// session token is stored via SetToken.
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)

	// RefreshToken exchanges the stored token for a fresh one and stores it.
	RefreshToken(ctx context.Context) (models.TokenResponse, error)

	// ChangePassword replaces the password of the token owner.
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error

	// ResetPassword starts the recovery flow. The acknowledgment is the same
	// whether or not the account exists.
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error)

	// RecoverPassword finishes the recovery flow with the token delivered to
	// the account owner.
	RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error

	// Profile returns the profile of the token owner.
	Profile(ctx context.Context) (models.UserProfile, error)

	// UpdateProfile changes the username and/or display name of the token
	// owner.
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error)

	// FindUser is the administrative lookup by id.
	FindUser(ctx context.Context, userID string) (models.UserProfile, error)

	// Version returns the server version string.
	Version(ctx context.Context) (string, error)
}
