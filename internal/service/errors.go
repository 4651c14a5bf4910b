// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-identity-keeper/internal/crypto"
)

// Credential lifecycle failures. Enumeration-sensitive outcomes are
// collapsed into ErrInvalidCredentials and a generic acknowledgment before
// they leave the service.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrDuplicateIdentity     = errors.New("username or email is already taken")
	ErrWeakPassword          = errors.New("password does not meet the policy")
	ErrInvalidOrExpiredToken = errors.New("recovery token is invalid or expired")

	// ErrUserNotFound is only surfaced to admin lookups. A session whose
	// subject is gone fails with ErrTokenIsExpiredOrInvalid instead.
	ErrUserNotFound = errors.New("user not found")

	// ErrCorruptCredential means a stored password hash could not be read.
	// It is logged and answered as ErrInvalidCredentials.
	ErrCorruptCredential = crypto.ErrCorruptCredential

	// ErrStoreUnavailable is a transient infrastructure failure; the caller
	// may retry.
	ErrStoreUnavailable = errors.New("credential store is unavailable")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
)

var (
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
