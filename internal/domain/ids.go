// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package domain holds the identifier types shared across Lock Keeper's
// storage, session-cache, and operation-handler layers, so none of them
// need to import each other just to agree on what an AccountID is.
package domain

import "github.com/google/uuid"

// AccountID is the server-assigned, stable integer identifier for an
// account (spec §3, "Account"). It is never exposed to the client; the
// client-visible identifier is [UserID].
type AccountID int64

// UserID is the 16 random, immutable bytes identifying an account to the
// outside world and to the key hierarchy (spec §3: "user identifier (16
// random bytes, immutable)"). It is the associated-data anchor for every
// per-account key derivation in internal/keyhierarchy.
type UserID uuid.UUID

// NewUserID draws a fresh, random user id.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// UUID returns u as a [uuid.UUID], the form internal/keyhierarchy's
// functions expect.
func (u UserID) UUID() uuid.UUID {
	return uuid.UUID(u)
}

// String renders the user id as its canonical UUID string form.
func (u UserID) String() string {
	return uuid.UUID(u).String()
}

// ParseUserID parses s (a canonical UUID string) into a [UserID].
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(id), nil
}

// KeyIDBytes is the storage-layer representation of a stored secret or
// signing key's identifier (spec §3: "key identifier (32 bytes...)").
// internal/keyhierarchy.KeyID is the same 32 bytes under a domain-specific
// name; this type lets internal/store describe its schema without
// importing the key-hierarchy package.
type KeyIDBytes [32]byte

// SessionID identifies one row in the session cache (spec §4.4): a random
// UUID generated fresh by CreateSession.
type SessionID uuid.UUID

// NewSessionID draws a fresh, random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// String renders the session id as its canonical UUID string form.
func (s SessionID) String() string {
	return uuid.UUID(s).String()
}

// ParseSessionID parses s (a canonical UUID string) into a [SessionID].
func ParseSessionID(s string) (SessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(id), nil
}
