package models

import "time"

// AuthResponse is returned by every operation that mints a session token.
type AuthResponse struct {
	// User is the public projection of the authenticated account.
	User UserProfile `json:"user"`

	// Token is the compact session token.
	Token string `json:"token"`

	// ExpiresAt is the moment the token stops being accepted.
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenResponse is returned by the refresh operation.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Ack is a generic acknowledgment. Its content never depends on whether an
// account exists.
type Ack struct {
	Message string `json:"message"`
}

// ResetPasswordAck is the acknowledgment sent for every reset-password
// request, known identifier or not.
var ResetPasswordAck = Ack{Message: "if the account exists, recovery instructions have been sent"}
