// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/crypto"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// credentialService is the concrete implementation of CredentialService.
//
// It keeps no mutable state of its own: every race between concurrent
// requests for the same user is resolved by the store (last-write-wins for
// password changes, compare-and-set for recovery).
type credentialService struct {
	users    store.UserRepository
	audit    LoginAuditSink
	notifier RecoveryNotifier

	hasher   crypto.PasswordHasher
	tokens   crypto.TokenIssuer
	recovery crypto.RecoveryTokenIssuer
	policy   PasswordPolicy

	// tokenDuration controls how long a newly issued session token remains
	// valid.
	tokenDuration time.Duration

	newID func() string
	now   func() time.Time

	logger *logger.Logger
}

// NewCredentialService builds the credential lifecycle manager from the App
// settings. The password hasher, session and recovery token issuers are
// created here so that their keys never leave the service layer.
func NewCredentialService(
	users store.UserRepository,
	audit LoginAuditSink,
	notifier RecoveryNotifier,
	cfg config.App,
	logger *logger.Logger,
) (CredentialService, error) {
	hasher, err := crypto.NewPasswordHasher(cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("error creating password hasher: %w", err)
	}

	tokens, err := crypto.NewTokenIssuer(cfg.TokenSignKey, cfg.TokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("error creating token issuer: %w", err)
	}

	recovery, err := crypto.NewRecoveryTokenIssuer(cfg.RecoveryHashKey, cfg.RecoveryTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error creating recovery token issuer: %w", err)
	}

	return &credentialService{
		users:         users,
		audit:         audit,
		notifier:      notifier,
		hasher:        hasher,
		tokens:        tokens,
		recovery:      recovery,
		policy:        NewPasswordPolicy(cfg.PasswordMinLength),
		tokenDuration: cfg.TokenDuration,
		newID:         utils.NewUUIDGenerator().Generate,
		now:           time.Now,
		logger:        logger,
	}, nil
}

// Signup creates an ACTIVE account with the default scope and signs the
// caller in.
func (s *credentialService) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	log := logger.FromContext(ctx)

	if strings.Contains(req.Username, "@") {
		return models.AuthResponse{}, fmt.Errorf("%w: username must not contain '@'", ErrInvalidDataProvided)
	}
	if err := s.policy.Check(req.Password); err != nil {
		return models.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		log.Err(err).Str("func", "*credentialService.Signup").Msg("error hashing password")
		return models.AuthResponse{}, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, models.User{
		ID:           s.newID(),
		Username:     req.Username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: hash,
		Scope:        models.ScopeUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		log.Err(err).Str("func", "*credentialService.Signup").Str("username", req.Username).Msg("user creation ended with error")
		return models.AuthResponse{}, storeError(err)
	}

	log.Info().Str("user_id", user.ID).Msg("user signed up")
	return s.authResponse(user)
}

// Login verifies the password and mints a session token carrying the
// stored scope. An unknown user and a wrong password produce the same
// error and cost the same bcrypt comparison.
func (s *credentialService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.FindByUsernameOrEmail(ctx, req.Username)
	if errors.Is(err, store.ErrNoUserWasFound) {
		s.hasher.VerifyDummy(req.Password)
		log.Debug().Str("func", "*credentialService.Login").Msg("login for unknown identifier")
		return models.AuthResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Err(err).Str("func", "*credentialService.Login").Msg("user search failed")
		return models.AuthResponse{}, storeError(err)
	}

	if err = s.verifyPassword(ctx, req.Password, user); err != nil {
		return models.AuthResponse{}, err
	}

	resp, err := s.authResponse(user)
	if err != nil {
		return models.AuthResponse{}, err
	}

	// the caller is gone: the token is never delivered, so no login happened
	if err = ctx.Err(); err != nil {
		return models.AuthResponse{}, err
	}

	entry := models.LoginAuditEntry{
		UserID:         user.ID,
		IP:             req.IP,
		ClientIdentity: req.ClientIdentity,
		Timestamp:      s.now().UTC(),
	}
	if err = s.audit.Append(ctx, entry); err != nil {
		log.Err(err).Str("func", "*credentialService.Login").Str("user_id", user.ID).Msg("login audit entry was not recorded")
	}

	return resp, nil
}

// RefreshToken keeps the scope of the presented token unless the account
// has lost the admin scope in the meantime.
func (s *credentialService) RefreshToken(ctx context.Context, userID string, scope models.Scope) (models.TokenResponse, error) {
	if !scope.Valid() {
		return models.TokenResponse{}, fmt.Errorf("%w: unknown scope %q", ErrInvalidDataProvided, scope)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*credentialService.RefreshToken").Str("user_id", userID).Msg("user search failed")
		return models.TokenResponse{}, sessionStoreError(err)
	}

	if scope == models.ScopeAdmin && user.Scope != models.ScopeAdmin {
		scope = models.ScopeUser
	}

	token, err := s.tokens.Issue(user.ID, scope, s.tokenDuration, elevationFor(user))
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return models.TokenResponse{Token: token.String(), ExpiresAt: token.ExpiresAtTime()}, nil
}

// ChangePassword replaces the hash of an authenticated user. Concurrent
// changes resolve last-write-wins and a pending recovery token stays valid.
func (s *credentialService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	if err := s.policy.Check(req.Password); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		log.Err(err).Str("func", "*credentialService.ChangePassword").Str("user_id", req.UserID).Msg("user search failed")
		return sessionStoreError(err)
	}

	if err = s.verifyPassword(ctx, req.OldPassword, user); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err = s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Err(err).Str("func", "*credentialService.ChangePassword").Str("user_id", user.ID).Msg("password update failed")
		return sessionStoreError(err)
	}

	log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// ResetPassword moves a known account to RECOVERY_PENDING, superseding any
// previous token. The response never depends on whether the account exists.
func (s *credentialService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.FindByUsernameOrEmail(ctx, req.UsernameOrEmail)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Debug().Str("func", "*credentialService.ResetPassword").Msg("reset requested for unknown identifier")
		return models.ResetPasswordAck, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*credentialService.ResetPassword").Msg("user search failed")
		return models.Ack{}, storeError(err)
	}

	grant, err := s.recovery.Issue(user.ID)
	if err != nil {
		log.Err(err).Str("func", "*credentialService.ResetPassword").Str("user_id", user.ID).Msg("error issuing recovery token")
		return models.Ack{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	err = s.users.SetRecoveryToken(ctx, user.ID, grant.Token)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.ResetPasswordAck, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*credentialService.ResetPassword").Str("user_id", user.ID).Msg("error storing recovery token")
		return models.Ack{}, storeError(err)
	}

	notice := models.RecoveryNotice{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		RawToken:  grant.RawToken,
		ExpiresAt: grant.Token.ExpiresAt,
	}
	if err = s.notifier.Notify(ctx, notice); err != nil {
		// the token stays valid; the user can ask for another one
		log.Err(err).Str("func", "*credentialService.ResetPassword").Str("user_id", user.ID).Msg("recovery notice was not delivered")
	}

	log.Info().Str("user_id", user.ID).Msg("recovery token issued")
	return models.ResetPasswordAck, nil
}

// RecoverPassword consumes a recovery token. Verification happens twice:
// once here against the loaded record and once in the store as a
// compare-and-set, so a token consumed or superseded concurrently fails.
func (s *credentialService) RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error {
	log := logger.FromContext(ctx)

	userID, err := s.recovery.Parse(req.Token)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}

	if err = s.policy.Check(req.Password); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		log.Err(err).Str("func", "*credentialService.RecoverPassword").Msg("user search failed")
		return storeError(err)
	}

	if user.Recovery == nil || !s.recovery.Verify(req.Token, *user.Recovery) {
		log.Warn().Str("func", "*credentialService.RecoverPassword").Str("user_id", user.ID).Msg("recovery token rejected")
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = s.users.UpdatePasswordAndClearRecovery(ctx, user.ID, user.Recovery.TokenHash, hash, s.now().UTC())
	if errors.Is(err, store.ErrRecoveryTokenMismatch) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		log.Err(err).Str("func", "*credentialService.RecoverPassword").Str("user_id", user.ID).Msg("password update failed")
		return storeError(err)
	}

	log.Info().Str("user_id", user.ID).Msg("password recovered")
	return nil
}

// ParseToken validates a session token. Every verification failure is
// reported as ErrTokenIsExpiredOrInvalid with the cause attached.
func (s *credentialService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := s.tokens.Verify(tokenString)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenIsExpiredOrInvalid, err)
	}

	return token, nil
}

// verifyPassword collapses every verification failure into
// ErrInvalidCredentials. A corrupt stored hash is an integrity problem and
// is logged as such.
func (s *credentialService) verifyPassword(ctx context.Context, password string, user models.User) error {
	err := s.hasher.Verify(password, user.PasswordHash)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrCorruptCredential) {
		logger.FromContext(ctx).Error().
			Str("user_id", user.ID).
			Msg("stored password hash is corrupt")
	}

	return ErrInvalidCredentials
}

func (s *credentialService) authResponse(user models.User) (models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Scope, s.tokenDuration, elevationFor(user))
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return models.AuthResponse{
		User:      user.Profile(),
		Token:     token.String(),
		ExpiresAt: token.ExpiresAtTime(),
	}, nil
}

// elevationFor grants the admin scope only to accounts that hold it.
func elevationFor(user models.User) models.Elevation {
	if user.Scope == models.ScopeAdmin {
		return models.ElevationGranted
	}
	return models.ElevationDenied
}

// storeError translates store sentinels into service errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrUsernameAlreadyExists), errors.Is(err, store.ErrEmailAlreadyExists):
		return fmt.Errorf("%w: %w", ErrDuplicateIdentity, err)
	case errors.Is(err, store.ErrNoUserWasFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrStoreUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("credential store error: %w", err)
	}
}

// sessionStoreError is storeError for callers identified by a session
// token: a subject that no longer exists reads as an invalid token.
func sessionStoreError(err error) error {
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrTokenIsExpiredOrInvalid
	}
	return storeError(err)
}
