package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-identity-keeper/internal/limiter"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
)

type Handler struct {
	services *service.Services
	limiter  limiter.Limiter
	gatherer prometheus.Gatherer

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. A nil limiter disables attempt
// limiting and a nil gatherer serves the default Prometheus registry.
func NewHandler(services *service.Services, lim limiter.Limiter, gatherer prometheus.Gatherer, logger *logger.Logger) *Handler {
	if lim == nil {
		lim = limiter.NewNopLimiter()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		limiter:  lim,
		gatherer: gatherer,
		logger:   logger,
	}
}
