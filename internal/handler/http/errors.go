// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors produced by the transport layer itself. Callers can match
// against them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInsufficientScope is returned when the session token is valid but
	// its scope does not grant access to the route.
	ErrInsufficientScope = errors.New("insufficient scope")

	// ErrInvalidJSON is returned when a request body cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrTooManyAttempts is returned when the attempt limiter rejects a
	// request.
	ErrTooManyAttempts = errors.New("too many attempts, try again later")

	// ErrRouteNotFound is returned for unknown routes and unsupported
	// methods alike.
	ErrRouteNotFound = errors.New("route not found")
)
