package http

import (
	"net/http"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// auth is an HTTP middleware that enforces session-token authentication
// and the route's required scope.
//
// It extracts the bearer token from the "Authorization" header, validates it
// via [service.CredentialService.ParseToken] and, on success, stores the
// subject id and scope in the request context (see [utils.WithPrincipal])
// before delegating to the next handler.
//
// Requests are rejected with:
//   - 401 when the header is absent or malformed, or the token is invalid
//     or expired;
//   - 403 when the token's scope does not satisfy required.
func (h *Handler) auth(required models.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, "*Handler.auth", ErrEmptyAuthorizationHeader)
				return
			}

			tokenString, err := utils.ParseBearerToken(authHeader)
			if err != nil {
				writeError(w, r, "*Handler.auth", err)
				return
			}

			ctx := r.Context()
			token, err := h.services.CredentialService.ParseToken(ctx, tokenString)
			if err != nil {
				writeError(w, r, "*Handler.auth", err)
				return
			}

			scope := token.SessionClaims.Scope
			if !scope.Satisfies(required) {
				writeError(w, r, "*Handler.auth", ErrInsufficientScope)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithPrincipal(ctx, token.UserID, scope)))
		})
	}
}

// principal returns the authenticated caller stored by [Handler.auth].
func principal(r *http.Request) (string, models.Scope, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	scope, ok := utils.GetScopeFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	return userID, scope, true
}
