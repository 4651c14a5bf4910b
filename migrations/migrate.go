// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations embeds the schema of the identity store and applies it
// with goose. PostgreSQL and SQLite each have their own migration set.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// ErrUnsupportedDialect is returned for a driver without a migration set.
var ErrUnsupportedDialect = errors.New("unsupported migration dialect")

// dialects maps a database/sql driver name to the goose dialect and the
// directory holding its migrations.
var dialects = map[string]struct {
	goose string
	dir   string
}{
	"pgx":     {goose: "postgres", dir: "postgres"},
	"sqlite3": {goose: "sqlite3", dir: "sqlite"},
}

// Migrate applies every pending migration of driver to db.
func Migrate(db *sql.DB, driver string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedDialect, driver)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(d.goose); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, d.dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
