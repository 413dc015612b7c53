// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

func newTestStore(t *testing.T) (*postgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	l := logger.NewLogger("test")
	store := &postgresStore{db: &DB{DB: rawDB, logger: l}, logger: l}
	return store, mock, rawDB
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestCreateAccount_Success(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	userID := domain.NewUserID()
	rows := sqlmock.NewRows([]string{"account_id", "user_id", "account_name", "server_registration", "encrypted_storage_key"}).
		AddRow(int64(1), userID.UUID(), "alice", []byte("reg"), nil)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs(userID.UUID(), "alice", []byte("reg")).
		WillReturnRows(rows)

	account, err := store.CreateAccount(context.Background(), userID, "alice", []byte("reg"))
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID(1), account.AccountID)
	assert.Equal(t, userID, account.UserID)
	assert.Nil(t, account.EncryptedStorageKey)
}

func TestCreateAccount_DuplicateName(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	userID := domain.NewUserID()
	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs(userID.UUID(), "alice", []byte("reg")).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := store.CreateAccount(context.Background(), userID, "alice", []byte("reg"))
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestFindAccountByName_NotFound(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.FindAccountByName(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNoEntry)
}

func TestAddSecret_DuplicateKeyID(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	userID := domain.NewUserID()
	var keyID domain.KeyIDBytes
	secret := StoredSecret{KeyID: keyID, UserID: userID, Type: SecretTypeArbitrary, EncryptedPayload: []byte("ct")}

	mock.ExpectExec("INSERT INTO secrets").
		WithArgs(keyID[:], userID.UUID(), int(SecretTypeArbitrary), []byte("ct"), false).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := store.AddSecret(context.Background(), secret)
	require.ErrorIs(t, err, ErrDuplicateKeyID)
}

func TestGetSecret_OwnerMismatch(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	owner := domain.NewUserID()
	intruder := domain.NewUserID()
	var keyID domain.KeyIDBytes

	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"key_id", "user_id", "secret_type", "encrypted_payload", "retrieved"}).
		AddRow(keyID[:], owner.UUID(), int(SecretTypeArbitrary), []byte("ct"), false)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)
	mock.ExpectRollback()

	_, err := store.GetSecret(context.Background(), intruder, keyID, nil)
	require.ErrorIs(t, err, ErrIncorrectAssociatedKeyData)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSecret_MarksRetrievedOnce(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	userID := domain.NewUserID()
	var keyID domain.KeyIDBytes

	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"key_id", "user_id", "secret_type", "encrypted_payload", "retrieved"}).
		AddRow(keyID[:], userID.UUID(), int(SecretTypeArbitrary), []byte("ct"), false)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)
	mock.ExpectExec("UPDATE secrets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	secret, err := store.GetSecret(context.Background(), userID, keyID, nil)
	require.NoError(t, err)
	assert.False(t, secret.Retrieved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSecret_NoRowsAffected(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	userID := domain.NewUserID()
	var keyID domain.KeyIDBytes

	mock.ExpectExec("DELETE FROM secrets").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteSecret(context.Background(), userID, keyID)
	require.ErrorIs(t, err, ErrNoEntry)
}

func TestCreateAuditEvent_Success(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	requestID := uuid.New()
	mock.ExpectExec("INSERT INTO audit_events").WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.CreateAuditEvent(context.Background(), requestID, domain.AccountID(1), nil, ActionAuthenticate, AuditStatusSuccessful)
	require.NoError(t, err)
}

func TestFindAuditEvents_ScansRows(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	requestID := uuid.New()
	rows := sqlmock.NewRows([]string{"event_id", "request_id", "account_id", "key_id", "action", "status", "created_at"}).
		AddRow(int64(1), requestID, int64(7), nil, int(ActionAuthenticate), int(AuditStatusSuccessful), time.Now())

	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	events, err := store.FindAuditEvents(context.Background(), domain.AccountID(7), AuditEventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].KeyID)
	assert.Equal(t, ActionAuthenticate, events[0].Action)
}

func TestFindAuditEvents_PropagatesDriverError(t *testing.T) {
	store, mock, db := newTestStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	_, err := store.FindAuditEvents(context.Background(), domain.AccountID(1), AuditEventFilter{})
	require.ErrorIs(t, err, ErrExecutingQuery)
}
