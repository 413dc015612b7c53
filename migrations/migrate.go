// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations manages database schema migrations for Lock Keeper.
// It uses the goose migration library with embedded SQL files, ensuring
// migrations are compiled into the binary and applied automatically at
// startup without requiring external file access.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// embedMigrations holds all *.sql migration files embedded into the binary
// at compile time.
//
//go:embed *.sql
var embedMigrations embed.FS

// Migrate applies all pending migrations against db using the pgx dialect.
// It is intended to be called once at application startup, before the
// database is used by any other component.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migration error: db is nil")
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
