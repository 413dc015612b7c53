// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

// postgresStore is the PostgreSQL-backed [DataStore]. All query strings are
// built with squirrel (sql_queries.go) and executed through the embedded
// database/sql pool in [DB]. Unique-constraint violations are recognised by
// their PostgreSQL error code (pgErrorCode) and translated to the sentinel
// errors declared in errors.go; other driver errors are wrapped in the
// low-level sentinels.
type postgresStore struct {
	db     *DB
	logger *logger.Logger
}

// NewPostgresStore constructs a [DataStore] backed by db.
func NewPostgresStore(db *DB, log *logger.Logger) DataStore {
	log.Debug().Msg("creating postgres data store")
	return &postgresStore{db: db, logger: log}
}
