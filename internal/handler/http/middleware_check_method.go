// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

// CheckHTTPMethod returns an [http.HandlerFunc] that is intended to be
// registered as the router's MethodNotAllowed handler via
// [chi.Mux.MethodNotAllowed].
//
// Chi responds with HTTP 405 whenever a request path matches a registered
// route but the method is not handled. The gateway answers such requests
// exactly like an unknown path (404 with the JSON error body), so callers
// cannot probe which operations exist. The registered methods of the
// matched route are logged at debug level to ease troubleshooting.
//
// Usage:
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		for _, method := range []string{http.MethodGet, http.MethodPost} {
			if router.Match(chi.NewRouteContext(), method, r.URL.Path) {
				log.Debug().
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("registered", method).
					Msg("method is not registered for route")
			}
		}

		writeError(w, r, "CheckHTTPMethod", ErrRouteNotFound)
	}
}
