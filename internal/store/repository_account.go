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

// CreateAccount persists a new account row. accountName and userID must
// both be unique across the table; PostgreSQL enforces this via unique
// constraints, reported back as [ErrDuplicateAccount].
func (s *postgresStore) CreateAccount(ctx context.Context, userID domain.UserID, accountName string, serverRegistration []byte) (Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateAccountQuery(ctx, userID, accountName, serverRegistration)
	if err != nil {
		return Account{}, err
	}

	row := s.db.QueryRowContext(ctx, query, args...)

	var account Account
	var rawUserID uuid.UUID
	var encryptedStorageKey []byte
	if err := row.Scan(&account.AccountID, &rawUserID, &account.AccountName, &account.ServerRegistration, &encryptedStorageKey); err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return Account{}, ErrDuplicateAccount
		}
		log.Err(err).Str("func", "postgresStore.CreateAccount").Msg("failed to insert account")
		return Account{}, fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}

	account.UserID = domain.UserID(rawUserID)
	account.EncryptedStorageKey = encryptedStorageKey
	return account, nil
}

// FindAccountByName looks up an account by its unique account name.
func (s *postgresStore) FindAccountByName(ctx context.Context, accountName string) (Account, error) {
	query, args, err := buildFindAccountByNameQuery(ctx, accountName)
	if err != nil {
		return Account{}, err
	}
	return s.scanOneAccount(ctx, query, args...)
}

// FindAccountByID looks up an account by its server-assigned id.
func (s *postgresStore) FindAccountByID(ctx context.Context, accountID domain.AccountID) (Account, error) {
	query, args, err := buildFindAccountByIDQuery(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	return s.scanOneAccount(ctx, query, args...)
}

// FindAccountByUserID looks up an account by the client-visible user id.
func (s *postgresStore) FindAccountByUserID(ctx context.Context, userID domain.UserID) (Account, error) {
	query, args, err := buildFindAccountByUserIDQuery(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	return s.scanOneAccount(ctx, query, args...)
}

func (s *postgresStore) scanOneAccount(ctx context.Context, query string, args ...any) (Account, error) {
	log := logger.FromContext(ctx)

	row := s.db.QueryRowContext(ctx, query, args...)

	var account Account
	var rawUserID uuid.UUID
	var encryptedStorageKey []byte
	if err := row.Scan(&account.AccountID, &rawUserID, &account.AccountName, &account.ServerRegistration, &encryptedStorageKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNoEntry
		}
		log.Err(err).Str("func", "postgresStore.scanOneAccount").Msg("failed to scan account row")
		return Account{}, fmt.Errorf("%w: %s", ErrScanningRow, err)
	}

	account.UserID = domain.UserID(rawUserID)
	account.EncryptedStorageKey = encryptedStorageKey
	return account, nil
}

// DeleteAccount removes an account and, via ON DELETE CASCADE, every
// secret and audit event belonging to it.
func (s *postgresStore) DeleteAccount(ctx context.Context, accountID domain.AccountID) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteAccountQuery(ctx, accountID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "postgresStore.DeleteAccount").Msg("failed to delete account")
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

// SetStorageKey records the client's encrypted storage key for accountID
// (spec §4.2, CreateStorageKey).
func (s *postgresStore) SetStorageKey(ctx context.Context, accountID domain.AccountID, encryptedStorageKey []byte) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSetStorageKeyQuery(ctx, accountID, encryptedStorageKey)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "postgresStore.SetStorageKey").Msg("failed to set storage key")
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
