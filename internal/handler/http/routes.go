package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// access is the authorization requirement of a route.
type access int

const (
	public access = iota
	authenticated
	administrative
)

// routeSpec describes one operation of the gateway. The table returned by
// [Handler.routes] is the single place where authorization requirements
// and attempt limiting are declared.
type routeSpec struct {
	method  string
	pattern string
	access  access
	// limited routes are subject to the attempt limiter, keyed by name.
	limited bool
	name    string
	handler http.HandlerFunc
}

func (h *Handler) routes() []routeSpec {
	return []routeSpec{
		{method: http.MethodPost, pattern: "/api/user/signup", access: public, name: "signup", handler: h.signup},
		{method: http.MethodPost, pattern: "/api/user/login", access: public, limited: true, name: "login", handler: h.login},
		{method: http.MethodPost, pattern: "/api/user/refresh-token", access: authenticated, name: "refresh-token", handler: h.refreshToken},
		{method: http.MethodPost, pattern: "/api/user/change-password", access: authenticated, name: "change-password", handler: h.changePassword},
		{method: http.MethodPost, pattern: "/api/user/reset-password", access: public, limited: true, name: "reset-password", handler: h.resetPassword},
		{method: http.MethodPost, pattern: "/api/user/recover-password/{token}", access: public, limited: true, name: "recover-password", handler: h.recoverPassword},
		{method: http.MethodGet, pattern: "/api/user/me", access: authenticated, name: "profile", handler: h.profile},
		{method: http.MethodPost, pattern: "/api/user/me", access: authenticated, name: "update-profile", handler: h.updateProfile},
		{method: http.MethodGet, pattern: "/api/users/{id}", access: administrative, name: "find-user", handler: h.findUser},
		{method: http.MethodGet, pattern: "/api/version/", access: public, name: "version", handler: h.getServerVersion},
		{method: http.MethodGet, pattern: "/api/version/build", access: public, name: "build-info", handler: h.getBuildInfo},
	}
}

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	for _, route := range h.routes() {
		var chain []func(http.Handler) http.Handler
		// attempts are counted before authentication
		if route.limited {
			chain = append(chain, h.withAttemptLimit(route.name))
		}
		switch route.access {
		case authenticated:
			chain = append(chain, h.auth(models.ScopeUser))
		case administrative:
			chain = append(chain, h.auth(models.ScopeAdmin))
		}

		router.With(chain...).Method(route.method, route.pattern, route.handler)
	}

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "*Handler.NotFound", ErrRouteNotFound)
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
