// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rkhiriev/lock-keeper/internal/config"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

// NewConnectPostgres opens a PostgreSQL connection using the pgx stdlib
// driver and the DSN supplied in cfg. It configures the connection pool,
// verifies reachability with a ping, and returns a [DB] value wired to a
// [PostgresErrorClassifier] for driver-level error classification.
//
// Returns an error if the driver cannot be opened, the ping fails, or the
// connection string is invalid.
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occurred during database connection")
		return nil, fmt.Errorf("error occurred during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err := conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	db := &DB{
		DB:                 conn,
		logger:             log,
		errorClassificator: NewPostgresErrorClassifier(),
	}

	return db, nil
}
