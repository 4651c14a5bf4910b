// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock -exclude_interfaces=CredentialServiceWrapper,UserServiceWrapper

import (
	"context"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// CredentialService drives the password and session lifecycle of a user.
type CredentialService interface {
	Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)

	// RefreshToken mints a fresh token for a caller that already holds a
	// valid one. scope is the scope of the presented token.
	RefreshToken(ctx context.Context, userID string, scope models.Scope) (models.TokenResponse, error)

	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error

	// ResetPassword always returns the same acknowledgment, whether or not
	// the identifier belongs to an account.
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error)
	RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error

	// ParseToken verifies a session token presented by a caller.
	ParseToken(ctx context.Context, token string) (models.Token, error)
}

// UserService exposes the non-credential part of a user record.
type UserService interface {
	Profile(ctx context.Context, userID string) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error)

	// FindUser is the administrative lookup by id.
	FindUser(ctx context.Context, userID string) (models.UserProfile, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}

// LoginAuditSink receives one entry per successful login. Implementations
// must not block the login response.
type LoginAuditSink interface {
	Append(ctx context.Context, entry models.LoginAuditEntry) error
}

// RecoveryNotifier delivers a freshly minted recovery token to the account
// owner.
type RecoveryNotifier interface {
	Notify(ctx context.Context, notice models.RecoveryNotice) error
}

// CredentialServiceWrapper defines middleware composition for
// CredentialService. Implementations wrap an existing CredentialService to
// add behavior such as validation or metrics.
type CredentialServiceWrapper interface {
	Wrap(CredentialService) CredentialService
}

// UserServiceWrapper is the UserService counterpart of
// CredentialServiceWrapper.
type UserServiceWrapper interface {
	Wrap(UserService) UserService
}
