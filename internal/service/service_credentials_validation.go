package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// CredentialValidationService rejects malformed requests with
// ErrInvalidDataProvided before they reach the wrapped service.
type CredentialValidationService struct {
	inner     CredentialService
	validator validators.Validator
}

func NewCredentialValidationService() CredentialServiceWrapper {
	return &CredentialValidationService{
		validator: validators.NewUserRequestValidator(),
	}
}

func (v *CredentialValidationService) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.AuthResponse{}, err
	}
	return v.inner.Signup(ctx, req)
}

func (v *CredentialValidationService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.AuthResponse{}, err
	}
	return v.inner.Login(ctx, req)
}

func (v *CredentialValidationService) RefreshToken(ctx context.Context, userID string, scope models.Scope) (models.TokenResponse, error) {
	if !utils.IsUUID(userID) || !scope.Valid() {
		return models.TokenResponse{}, ErrInvalidDataProvided
	}
	return v.inner.RefreshToken(ctx, userID, scope)
}

func (v *CredentialValidationService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if err := v.validate(ctx, req); err != nil {
		return err
	}
	return v.inner.ChangePassword(ctx, req)
}

func (v *CredentialValidationService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.Ack{}, err
	}
	return v.inner.ResetPassword(ctx, req)
}

// RecoverPassword reports a missing token as an invalid token rather than as
// malformed input.
func (v *CredentialValidationService) RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error {
	if err := v.validator.Validate(ctx, req, validators.FieldToken); err != nil {
		return ErrInvalidOrExpiredToken
	}
	if err := v.validate(ctx, req, validators.FieldPassword); err != nil {
		return err
	}
	return v.inner.RecoverPassword(ctx, req)
}

func (v *CredentialValidationService) ParseToken(ctx context.Context, token string) (models.Token, error) {
	if token == "" {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}
	return v.inner.ParseToken(ctx, token)
}

func (v *CredentialValidationService) Wrap(inner CredentialService) CredentialService {
	v.inner = inner
	return v
}

func (v *CredentialValidationService) validate(ctx context.Context, obj any, fields ...string) error {
	if err := v.validator.Validate(ctx, obj, fields...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return nil
}

// UserValidationService is the UserService counterpart of
// CredentialValidationService.
type UserValidationService struct {
	inner     UserService
	validator validators.Validator
}

func NewUserValidationService() UserServiceWrapper {
	return &UserValidationService{
		validator: validators.NewUserRequestValidator(),
	}
}

func (v *UserValidationService) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	if !utils.IsUUID(userID) {
		return models.UserProfile{}, ErrInvalidDataProvided
	}
	return v.inner.Profile(ctx, userID)
}

func (v *UserValidationService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.UpdateProfile(ctx, req)
}

// FindUser treats a malformed id as an unknown one.
func (v *UserValidationService) FindUser(ctx context.Context, userID string) (models.UserProfile, error) {
	if !utils.IsUUID(userID) {
		return models.UserProfile{}, ErrUserNotFound
	}
	return v.inner.FindUser(ctx, userID)
}

func (v *UserValidationService) Wrap(inner UserService) UserService {
	v.inner = inner
	return v
}
