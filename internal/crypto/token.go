package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-identity-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

type jwtIssuer struct {
	signKey []byte
	issuer  string
	now     func() time.Time
}

// NewTokenIssuer returns a [TokenIssuer] producing HMAC-SHA256 JWTs with the
// given issuer claim.
func NewTokenIssuer(signKey, issuer string, opts ...Option) (TokenIssuer, error) {
	if signKey == "" || issuer == "" {
		return nil, ErrInvalidTokenParams
	}

	o := newOptions(opts)
	return &jwtIssuer{
		signKey: []byte(signKey),
		issuer:  issuer,
		now:     o.now,
	}, nil
}

// Issue creates a signed HMAC-SHA256 JWT with the following claims:
//   - Issuer    (iss): the configured issuer
//   - Subject   (sub): subjectID
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus ttl
//   - scope:           the authorization tier
func (i *jwtIssuer) Issue(subjectID string, scope models.Scope, ttl time.Duration, elevation models.Elevation) (models.Token, error) {
	if subjectID == "" || ttl <= 0 || !scope.Valid() {
		return models.Token{}, ErrInvalidTokenParams
	}
	if scope == models.ScopeAdmin && elevation != models.ElevationGranted {
		return models.Token{}, ErrScopeElevationDenied
	}

	now := i.now()
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.Token{
		Token:         token,
		SessionClaims: claims,
		SignedString:  signed,
		UserID:        subjectID,
	}, nil
}

// Verify validates the signature (HS256 only), issuer and expiry of token and
// checks the scope claim against the closed set of scopes.
func (i *jwtIssuer) Verify(token string) (models.Token, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return models.Token{}, classifyJWTError(err)
	}

	if claims.Subject == "" {
		return models.Token{}, fmt.Errorf("%w: empty subject", ErrMalformedToken)
	}
	if !claims.Scope.Valid() {
		return models.Token{}, fmt.Errorf("%w: unknown scope %q", ErrMalformedToken, claims.Scope)
	}

	return models.Token{
		Token:         parsed,
		SessionClaims: *claims,
		SignedString:  token,
		UserID:        claims.Subject,
	}, nil
}

// classifyJWTError maps jwt validation errors to the issuer's error set.
// A foreign issuer is reported as a signature failure: the token was not
// minted by this service.
func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}
