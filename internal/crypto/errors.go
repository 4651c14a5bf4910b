package crypto

import "errors"

var (
	ErrPasswordMismatch  = errors.New("password does not match")
	ErrCorruptCredential = errors.New("stored credential is corrupt or has an unsupported format")

	ErrExpiredToken         = errors.New("token expired")
	ErrInvalidSignature     = errors.New("token signature is invalid")
	ErrMalformedToken       = errors.New("token is malformed")
	ErrScopeElevationDenied = errors.New("admin scope requires explicit elevation")
	ErrInvalidTokenParams   = errors.New("invalid params for generating token")

	ErrInvalidRecoveryToken = errors.New("recovery token is malformed")
)
