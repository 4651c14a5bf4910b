package service

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type Services struct {
	CredentialService CredentialService
	UserService       UserService
	AppInfoService    AppInfoService
}

// Dependencies are the collaborators the services need besides storage.
type Dependencies struct {
	Audit      LoginAuditSink
	Notifier   RecoveryNotifier
	Registerer prometheus.Registerer
	BuildInfo  models.AppBuildInfo
}

// NewServices builds the services and wraps them; calls flow through
// validation first, then metrics, then the service itself.
func NewServices(storages *store.Storages, deps Dependencies, cfg config.App, logger *logger.Logger) (*Services, error) {
	logger.Info().Msg("creating new services...")

	credentials, err := NewCredentialService(storages.UserRepository, deps.Audit, deps.Notifier, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating credential service: %w", err)
	}

	metrics, err := NewCredentialMetricsService(deps.Registerer)
	if err != nil {
		return nil, fmt.Errorf("error creating credential metrics: %w", err)
	}

	appInfo, err := NewAppInfoService(cfg, deps.BuildInfo, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		CredentialService: NewCredentialValidationService().Wrap(metrics.Wrap(credentials)),
		UserService:       NewUserValidationService().Wrap(NewUserService(storages.UserRepository, logger)),
		AppInfoService:    appInfo,
	}, nil
}
