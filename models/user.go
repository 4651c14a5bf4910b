// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is the opaque unique identifier of the user (UUIDv7).
	// It is assigned on signup and never changes afterwards.
	ID string `json:"id"`

	// Username is the unique login identifier. It is case-sensitive and
	// must not contain "@" so that it can never collide with an email.
	Username string `json:"username"`

	// Email is the unique contact address. It is stored lower-cased, which
	// makes uniqueness case-insensitive.
	Email string `json:"email"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// PasswordHash is the bcrypt blob (algorithm, cost, salt and digest).
	// It never leaves the service layer and is never logged.
	PasswordHash string `json:"-"`

	// Scope is the authorization tier stored for the account.
	Scope Scope `json:"scope"`

	// Recovery is the pending password recovery token, nil when the account
	// is not in the recovery flow.
	Recovery *RecoveryToken `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last credential or profile change.
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile returns the public projection of the user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Scope:     u.Scope,
		CreatedAt: u.CreatedAt,
	}
}

// UserProfile is the only user representation returned to callers.
type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Scope     Scope     `json:"scope"`
	CreatedAt time.Time `json:"created_at"`
}

// RecoveryToken is the persisted half of a password recovery token.
// Only the keyed hash of the secret is stored; the raw token is handed to
// the user once and forgotten.
type RecoveryToken struct {
	TokenHash string
	ExpiresAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (r RecoveryToken) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// RecoveryGrant is the result of minting a recovery token.
type RecoveryGrant struct {
	// RawToken is delivered to the account owner and never persisted.
	RawToken string
	// Token is the part that goes to the credential store.
	Token RecoveryToken
}

// RecoveryNotice is handed to the delivery channel (email gateway, queue)
// after a recovery token was persisted.
type RecoveryNotice struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	RawToken  string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
