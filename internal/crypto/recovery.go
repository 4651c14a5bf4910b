package crypto

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// recoverySecretSize is the number of random bytes in a recovery token.
const recoverySecretSize = 32

var recoveryEncoding = base64.RawURLEncoding

type recoveryIssuer struct {
	hashKey string
	ttl     time.Duration
	now     func() time.Time
	random  io.Reader
}

// NewRecoveryTokenIssuer returns a [RecoveryTokenIssuer] whose tokens live
// for ttl and are stored as HMAC-SHA256(hashKey, raw).
//
// Raw tokens have the form base64url(userID) "." base64url(secret) so the
// owner can be looked up before the secret is checked.
func NewRecoveryTokenIssuer(hashKey string, ttl time.Duration, opts ...Option) (RecoveryTokenIssuer, error) {
	if hashKey == "" || ttl <= 0 {
		return nil, ErrInvalidTokenParams
	}

	o := newOptions(opts)
	return &recoveryIssuer{
		hashKey: hashKey,
		ttl:     ttl,
		now:     o.now,
		random:  o.random,
	}, nil
}

func (r *recoveryIssuer) Issue(userID string) (models.RecoveryGrant, error) {
	if userID == "" {
		return models.RecoveryGrant{}, ErrInvalidTokenParams
	}

	secret := make([]byte, recoverySecretSize)
	if _, err := io.ReadFull(r.random, secret); err != nil {
		return models.RecoveryGrant{}, fmt.Errorf("error generating recovery secret: %w", err)
	}

	raw := recoveryEncoding.EncodeToString([]byte(userID)) + "." + recoveryEncoding.EncodeToString(secret)

	return models.RecoveryGrant{
		RawToken: raw,
		Token: models.RecoveryToken{
			TokenHash: r.HashToken(raw),
			ExpiresAt: r.now().Add(r.ttl).UTC(),
		},
	}, nil
}

func (r *recoveryIssuer) Parse(raw string) (string, error) {
	selector, secret, ok := strings.Cut(raw, ".")
	if !ok || selector == "" || secret == "" {
		return "", ErrInvalidRecoveryToken
	}

	userID, err := recoveryEncoding.DecodeString(selector)
	if err != nil || len(userID) == 0 {
		return "", ErrInvalidRecoveryToken
	}

	decoded, err := recoveryEncoding.DecodeString(secret)
	if err != nil || len(decoded) != recoverySecretSize {
		return "", ErrInvalidRecoveryToken
	}

	return string(userID), nil
}

func (r *recoveryIssuer) HashToken(raw string) string {
	return utils.HashString(raw, r.hashKey)
}

func (r *recoveryIssuer) Verify(raw string, stored models.RecoveryToken) bool {
	if raw == "" || stored.TokenHash == "" {
		return false
	}
	if stored.Expired(r.now()) {
		return false
	}

	return utils.EqualHashes(r.HashToken(raw), stored.TokenHash)
}
