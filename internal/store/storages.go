// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

// Storages groups the repositories used by the service layer together with
// the connection they share.
type Storages struct {
	UserRepository       UserRepository
	LoginAuditRepository LoginAuditRepository

	db *DB
}

// NewStorages opens the configured database, applies pending migrations and
// builds the repositories on top of it.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Str("driver", cfg.Driver).Msg("creating new storages...")

	db, err := NewConnection(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newStorages(db, logger), nil
}

func newStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		UserRepository:       NewUserRepository(db, logger),
		LoginAuditRepository: NewLoginAuditRepository(db, logger),
		db:                   db,
	}
}

// Ping reports whether the database is reachable.
func (s *Storages) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Storages) Close() error {
	return s.db.Close()
}
