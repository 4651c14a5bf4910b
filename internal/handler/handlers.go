package handler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/handler/grpc"
	"github.com/MKhiriev/go-identity-keeper/internal/handler/http"
	"github.com/MKhiriev/go-identity-keeper/internal/limiter"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// Dependencies are the transport-level collaborators of the handlers.
type Dependencies struct {
	Limiter  limiter.Limiter
	Gatherer prometheus.Gatherer
}

func NewHandlers(services *service.Services, deps Dependencies, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, deps.Limiter, deps.Gatherer, logger)
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
