// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
)

// withAttemptLimit counts requests per operation and client address. When the
// limiter itself fails the request is let through: an unavailable Redis must
// not lock everybody out of their accounts.
func (h *Handler) withAttemptLimit(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := operation + ":" + utils.ClientIP(r)

			allowed, err := h.limiter.Allow(r.Context(), key)
			if err != nil {
				logger.FromRequest(r).Warn().Err(err).
					Str("func", "*Handler.withAttemptLimit").
					Str("operation", operation).
					Msg("attempt limiter is unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				writeError(w, r, "*Handler.withAttemptLimit", ErrTooManyAttempts)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
