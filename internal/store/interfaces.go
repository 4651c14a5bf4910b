package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// UserRepository persists user records. Every method is keyed by the opaque
// user id except the lookups used to find that id.
type UserRepository interface {
	// Create inserts a new user. A taken username or email yields
	// ErrUsernameAlreadyExists or ErrEmailAlreadyExists.
	Create(ctx context.Context, user models.User) (models.User, error)

	// FindByUsernameOrEmail matches identifier against the username and the
	// lower-cased email. Returns ErrNoUserWasFound when nothing matches.
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)

	FindByID(ctx context.Context, id string) (models.User, error)

	// UpdatePassword replaces the password hash unconditionally. Concurrent
	// calls resolve last-write-wins. Recovery state is left untouched.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdatePasswordAndClearRecovery replaces the password hash and clears
	// the recovery token in one statement, but only while the stored token
	// hash equals expectedTokenHash and has not expired at now. Otherwise
	// ErrRecoveryTokenMismatch is returned and nothing changes.
	UpdatePasswordAndClearRecovery(ctx context.Context, id, expectedTokenHash, passwordHash string, now time.Time) error

	// SetRecoveryToken stores token, replacing any previous one.
	SetRecoveryToken(ctx context.Context, id string, token models.RecoveryToken) error

	// UpdateProfile changes the username and display name.
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)
}

// LoginAuditRepository appends login audit entries. Entries are never
// updated or removed.
type LoginAuditRepository interface {
	Append(ctx context.Context, entry models.LoginAuditEntry) error
}

// ErrorClassificator decides whether a driver error is worth retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
