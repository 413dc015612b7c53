// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

// AddSecret inserts a new stored secret. keyID must be unique across the
// whole table, not just within the owning account, since key ids are
// generated server-side from global randomness (spec §4.5).
func (s *postgresStore) AddSecret(ctx context.Context, secret StoredSecret) error {
	log := logger.FromContext(ctx)

	query, args, err := buildAddSecretQuery(ctx, secret)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return ErrDuplicateKeyID
		}
		log.Err(err).Str("func", "postgresStore.AddSecret").Msg("failed to insert secret")
		return fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}
	return nil
}

// GetSecret looks up keyID and, on the first successful lookup, marks it
// retrieved inside the same transaction so a concurrent caller can never
// observe two "not yet retrieved" reads for a one-time secret (spec §4.5,
// "Retrieved" flag). A nonexistent keyID reports [ErrNoEntry]; a keyID that
// exists but is owned by a different userID, or whose type does not match
// typeFilter, reports [ErrIncorrectAssociatedKeyData] (spec §4.3).
func (s *postgresStore) GetSecret(ctx context.Context, userID domain.UserID, keyID domain.KeyIDBytes, typeFilter *SecretType) (StoredSecret, error) {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "postgresStore.GetSecret").Msg("failed to begin transaction")
		return StoredSecret{}, fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}
	defer tx.Rollback()

	query, args, err := buildGetSecretQuery(ctx, keyID)
	if err != nil {
		return StoredSecret{}, err
	}

	var secret StoredSecret
	var rawKeyID, rawPayload []byte
	var rawUserID uuid.UUID
	row := tx.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&rawKeyID, &rawUserID, &secret.Type, &rawPayload, &secret.Retrieved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredSecret{}, ErrNoEntry
		}
		log.Err(err).Str("func", "postgresStore.GetSecret").Msg("failed to scan secret row")
		return StoredSecret{}, fmt.Errorf("%w: %s", ErrScanningRow, err)
	}

	if domain.UserID(rawUserID) != userID {
		return StoredSecret{}, ErrIncorrectAssociatedKeyData
	}
	if typeFilter != nil && secret.Type != *typeFilter {
		return StoredSecret{}, ErrIncorrectAssociatedKeyData
	}

	copy(secret.KeyID[:], rawKeyID)
	secret.UserID = userID
	secret.EncryptedPayload = rawPayload

	if !secret.Retrieved {
		markQuery, markArgs, err := buildMarkSecretRetrievedQuery(ctx, keyID)
		if err != nil {
			return StoredSecret{}, err
		}
		if _, err := tx.ExecContext(ctx, markQuery, markArgs...); err != nil {
			log.Err(err).Str("func", "postgresStore.GetSecret").Msg("failed to mark secret retrieved")
			return StoredSecret{}, fmt.Errorf("%w: %s", ErrExecutingStatement, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "postgresStore.GetSecret").Msg("failed to commit transaction")
		return StoredSecret{}, fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}

	return secret, nil
}

// DeleteSecret removes the secret owned by (userID, keyID). It reports
// [ErrNoEntry] when nothing matched, including a key owned by another user;
// the DeleteKey handler passes that on to the client as NoEntry.
func (s *postgresStore) DeleteSecret(ctx context.Context, userID domain.UserID, keyID domain.KeyIDBytes) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteSecretQuery(ctx, userID, keyID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "postgresStore.DeleteSecret").Msg("failed to delete secret")
		return fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoEntry
	}
	return nil
}
