// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Scope is the coarse authorization tier embedded in a session token.
// The set of values is closed: anything not listed below is rejected when
// a token is verified.
type Scope string

const (
	// ScopeUser is the default tier granted to every account.
	ScopeUser Scope = "user"
	// ScopeAdmin unlocks administrative endpoints.
	ScopeAdmin Scope = "admin"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeUser, ScopeAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether a token carrying s may access an operation
// that requires the required scope.
func (s Scope) Satisfies(required Scope) bool {
	switch required {
	case ScopeUser:
		return s == ScopeUser || s == ScopeAdmin
	case ScopeAdmin:
		return s == ScopeAdmin
	default:
		return false
	}
}

func (s Scope) String() string {
	return string(s)
}

// Elevation tells the token issuer whether the caller authorized minting a
// token with a privileged scope.
type Elevation int

const (
	// ElevationDenied is the zero value: only ScopeUser tokens may be issued.
	ElevationDenied Elevation = iota
	// ElevationGranted allows ScopeAdmin tokens.
	ElevationGranted
)
