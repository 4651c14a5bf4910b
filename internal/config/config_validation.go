package config

import (
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"
)

var supportedDrivers = []string{"pgx", "sqlite3"}

// validate checks that the final merged [StructuredConfig] satisfies all
// server invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required", ErrInvalidAppConfigs)
	}
	if cfg.App.RecoveryHashKey == "" {
		return fmt.Errorf("%w: recovery hash key is required", ErrInvalidAppConfigs)
	}
	if cfg.App.RecoveryHashKey == cfg.App.TokenSignKey {
		return fmt.Errorf("%w: recovery hash key must differ from token sign key", ErrInvalidAppConfigs)
	}
	if cfg.App.TokenDuration <= 0 || cfg.App.RecoveryTokenDuration <= 0 {
		return fmt.Errorf("%w: token durations must be positive", ErrInvalidAppConfigs)
	}
	if cfg.App.PasswordHashCost < bcrypt.MinCost || cfg.App.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: password hash cost out of range", ErrInvalidAppConfigs)
	}
	if cfg.App.PasswordMinLength < 1 {
		return fmt.Errorf("%w: password min length must be positive", ErrInvalidAppConfigs)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: database DSN is required", ErrInvalidStorageConfigs)
	}
	if !slices.Contains(supportedDrivers, cfg.Storage.DB.Driver) {
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Limiter.RedisAddress != "" && (cfg.Limiter.Attempts < 1 || cfg.Limiter.Window <= 0) {
		return ErrInvalidLimiterConfigs
	}

	if cfg.Workers.AuditQueueSize < 1 || cfg.Workers.AuditWorkers < 1 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
