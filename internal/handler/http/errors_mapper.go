package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
)

// retryAfterSeconds is advertised on 429 and 503 responses.
const retryAfterSeconds = "5"

// errorStatusMap holds disjoint targets: no error in the chain of one target
// is another target.
var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrInvalidOrExpiredToken:   http.StatusBadRequest,
	service.ErrInvalidCredentials:      http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrDuplicateIdentity:       http.StatusConflict,
	service.ErrWeakPassword:            http.StatusUnprocessableEntity,
	service.ErrUserNotFound:            http.StatusNotFound,
	service.ErrStoreUnavailable:        http.StatusServiceUnavailable,

	ErrEmptyAuthorizationHeader:         http.StatusUnauthorized,
	utils.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrInsufficientScope:                http.StatusForbidden,
	ErrInvalidJSON:                      http.StatusBadRequest,
	ErrTooManyAttempts:                  http.StatusTooManyRequests,
	ErrRouteNotFound:                    http.StatusNotFound,
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFromError returns the status of the first matching target together
// with the target itself, which is the only text shown to the caller.
func statusFromError(err error) (int, error) {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status, target
		}
	}
	return http.StatusInternalServerError, nil
}

// writeError logs err with the request logger and answers with the public
// message of its category. Internal errors are answered with the status text.
func writeError(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	log := logger.FromRequest(r)

	status, target := statusFromError(err)
	message := http.StatusText(status)
	if target != nil {
		message = target.Error()
	}

	switch {
	case status >= http.StatusInternalServerError:
		log.Err(err).Str("func", funcName).Int("status", status).Msg("request failed")
	default:
		log.Debug().Err(err).Str("func", funcName).Int("status", status).Msg("request rejected")
	}

	if status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	_, _ = utils.WriteJSON(w, errorResponse{Error: message}, status)
}
