// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store provides data-access abstractions and a PostgreSQL-backed
// implementation for Lock Keeper's persisted state: accounts, stored
// secrets, and audit events (spec §4.3). The session cache is a distinct,
// in-memory component (internal/sessioncache) and is not part of this
// package.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/domain"
)

// SecretType tags what kind of key material a [StoredSecret] holds.
type SecretType int

const (
	SecretTypeArbitrary SecretType = iota
	SecretTypeClientGeneratedSigningKey
	SecretTypeServerGeneratedSigningKey
	SecretTypeImportedSigningKey
)

// Account is the server's record of one registered user (spec §3,
// "Account").
type Account struct {
	AccountID           domain.AccountID
	UserID              domain.UserID
	AccountName         string
	ServerRegistration  []byte // OPAQUE server-side registration record
	EncryptedStorageKey []byte // nil until CreateStorageKey runs
}

// StoredSecret is the server's record of one secret or signing key (spec
// §3, "Stored secret").
type StoredSecret struct {
	KeyID            domain.KeyIDBytes
	UserID           domain.UserID
	Type             SecretType
	EncryptedPayload []byte
	Retrieved        bool
}

// AuditStatus is the lifecycle stage of one audit event (spec §3, "Audit
// event").
type AuditStatus int

const (
	AuditStatusStarted AuditStatus = iota
	AuditStatusSuccessful
	AuditStatusFailed
)

// ClientAction enumerates every operation the audit log records.
type ClientAction int

const (
	ActionRegister ClientAction = iota
	ActionAuthenticate
	ActionLogout
	ActionGetUserID
	ActionCreateStorageKey
	ActionRetrieveStorageKey
	ActionGenerateSecret
	ActionRetrieveSecret
	ActionExportSecret
	ActionImportSigningKey
	ActionRemoteGenerateSigningKey
	ActionExportSigningKey
	ActionRetrieveSigningKey
	ActionRemoteSignBytes
	ActionDeleteKey
	ActionRetrieveAuditEvents
)

// AuditEvent is one append-only row of the audit log (spec §3, "Audit
// event").
type AuditEvent struct {
	EventID   int64
	RequestID uuid.UUID
	AccountID domain.AccountID
	KeyID     *domain.KeyIDBytes
	Action    ClientAction
	Status    AuditStatus
	Timestamp time.Time
}

// AuditEventFilter narrows [DataStore.FindAuditEvents] (spec §4.3:
// "filter by before/after timestamp, key_id set, request_id").
type AuditEventFilter struct {
	Before    *time.Time
	After     *time.Time
	KeyIDs    []domain.KeyIDBytes
	RequestID *uuid.UUID
}

//go:generate mockgen -source=interfaces.go -destination=../mock/data_store_mock.go -package=mock

// DataStore is Lock Keeper's abstract persistence surface (spec §4.3). All
// methods are safe for concurrent use by distinct accounts; the store
// itself is internally pooled.
type DataStore interface {
	CreateAccount(ctx context.Context, userID domain.UserID, accountName string, serverRegistration []byte) (Account, error)
	FindAccountByName(ctx context.Context, accountName string) (Account, error)
	FindAccountByID(ctx context.Context, accountID domain.AccountID) (Account, error)
	// FindAccountByUserID resolves an account from the client-visible user
	// id rather than the server-internal account id. CreateStorageKey needs
	// this: it runs right after Register, on an unauthenticated channel
	// with no session yet, identifying the account solely by the user id
	// Register just handed back (spec §4.6 step 5, §6).
	FindAccountByUserID(ctx context.Context, userID domain.UserID) (Account, error)
	DeleteAccount(ctx context.Context, accountID domain.AccountID) error
	SetStorageKey(ctx context.Context, accountID domain.AccountID, encryptedStorageKey []byte) error

	AddSecret(ctx context.Context, secret StoredSecret) error
	// GetSecret atomically marks the secret retrieved on first success.
	GetSecret(ctx context.Context, userID domain.UserID, keyID domain.KeyIDBytes, typeFilter *SecretType) (StoredSecret, error)
	DeleteSecret(ctx context.Context, userID domain.UserID, keyID domain.KeyIDBytes) error

	CreateAuditEvent(ctx context.Context, requestID uuid.UUID, accountID domain.AccountID, keyID *domain.KeyIDBytes, action ClientAction, status AuditStatus) error
	FindAuditEvents(ctx context.Context, accountID domain.AccountID, filter AuditEventFilter) ([]AuditEvent, error)
}
