// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// ErrorClassification is the result type returned by
// [ErrorClassificator.Classify]. It indicates whether a failed database
// operation should be retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be
	// retried. This is the default classification for unrecognised errors,
	// constraint violations, syntax errors, and data exceptions.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the failed operation may succeed if
	// attempted again (e.g. after a transient connection loss or a
	// deadlock rollback).
	Retryable
)

// ErrorClassificator defines a strategy for categorizing errors produced by
// persistence layers (e.g. PostgreSQL driver errors) into well-known
// application-level classifications.
type ErrorClassificator interface {
	// Classify maps an error into a predefined [ErrorClassification] enum.
	// If the error is not recognized, the implementation should return
	// a generic/unknown classification rather than panicking.
	Classify(err error) ErrorClassification
}

// Sentinel errors returned by [DataStore] methods to signal well-known
// failure conditions (spec §4.3). Callers should use [errors.Is] to match
// against these values.
var (
	// ErrDuplicateAccount is returned by CreateAccount when either the
	// account name or the user id already exists.
	ErrDuplicateAccount = errors.New("store: duplicate account")

	// ErrNoEntry is returned when a lookup by account id/name or
	// (user id, key id) finds nothing. Callers must not distinguish this
	// from ownership mismatch to an untrusted caller (spec §4.8's
	// "does not leak existence" edge case).
	ErrNoEntry = errors.New("store: no entry")

	// ErrDuplicateKeyID is returned by AddSecret on key id collision.
	ErrDuplicateKeyID = errors.New("store: duplicate key id")

	// ErrIncorrectAssociatedKeyData is returned by GetSecret when the key
	// id exists but the owning user id or the secret-type filter does not
	// match the stored record.
	ErrIncorrectAssociatedKeyData = errors.New("store: incorrect associated key data")
)

// Low-level database operation errors. Repository methods wrap a failed
// driver-level operation in one of these before returning, so callers can
// recognize "this is a storage problem" without inspecting driver types.
var (
	ErrBuildingSQLQuery  = errors.New("store: error building sql query")
	ErrExecutingQuery    = errors.New("store: error executing sql query")
	ErrExecutingStatement = errors.New("store: failed executing statement")
	ErrScanningRow       = errors.New("store: failed to scan row")
	ErrScanningRows      = errors.New("store: failed to scan rows")
)
