// Package crypto holds the credential primitives of the identity service:
// password hashing, session token signing and single-use recovery tokens.
// Nothing here knows about storage, transport or users beyond opaque ids.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

import (
	"time"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	// Hash returns a salted, self-describing hash of plaintext. Two calls with
	// the same input return different blobs.
	Hash(plaintext string) (string, error)

	// Verify compares plaintext with a blob produced by Hash. It returns nil
	// on match, ErrPasswordMismatch on mismatch and ErrCorruptCredential when
	// the blob cannot be interpreted.
	Verify(plaintext, hash string) error

	// VerifyDummy spends the same work as Verify against a fixed hash. It is
	// used when the account does not exist.
	VerifyDummy(plaintext string)
}

// TokenIssuer signs and verifies stateless session tokens.
type TokenIssuer interface {
	// Issue mints a token for subjectID valid for ttl. ScopeAdmin requires
	// elevation == models.ElevationGranted.
	Issue(subjectID string, scope models.Scope, ttl time.Duration, elevation models.Elevation) (models.Token, error)

	// Verify checks signature, issuer, expiry and scope of a token. Errors
	// are ErrExpiredToken, ErrInvalidSignature or ErrMalformedToken.
	Verify(token string) (models.Token, error)
}

// RecoveryTokenIssuer creates and checks single-use password recovery tokens.
// Only the hash of a token is ever persisted.
type RecoveryTokenIssuer interface {
	// Issue returns a fresh raw token for userID together with its hash and
	// expiry.
	Issue(userID string) (models.RecoveryGrant, error)

	// Parse extracts the user id a raw token was issued for without
	// verifying it.
	Parse(raw string) (string, error)

	// HashToken returns the value stored for raw.
	HashToken(raw string) string

	// Verify reports whether raw matches stored and stored has not expired.
	Verify(raw string, stored models.RecoveryToken) bool
}
