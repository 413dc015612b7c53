// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keyhierarchy

import (
	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// masterKeyDomainSeparator binds the master key to its one sanctioned
// purpose: deriving storage-key-encryption keys. It must never be reused
// for anything else.
const masterKeyDomainSeparator = "OPAQUE-derived Lock Keeper master key"

// MasterKey is a client-only symmetric key, derived once per authenticated
// session from the OPAQUE export key. It never leaves the client and is
// never written to storage; it exists only to encrypt and decrypt the
// client's [StorageKey].
type MasterKey struct {
	key crypto.EncryptionKey
}

// DeriveMasterKey derives a MasterKey from exportKey (the 32-byte export
// key produced by a successful OPAQUE handshake, internal/opaque) via
// HKDF-SHA3-256 with no salt.
func DeriveMasterKey(exportKey []byte) (MasterKey, error) {
	ctx := crypto.NewAssociatedData().WithString(masterKeyDomainSeparator)
	derived, err := crypto.DeriveFromBytes(exportKey, ctx)
	if err != nil {
		return MasterKey{}, err
	}
	return MasterKey{key: derived}, nil
}

// Zeroize overwrites the master key's material.
func (m *MasterKey) Zeroize() {
	m.key.Zeroize()
}

// CreateAndEncryptStorageKey generates a fresh [StorageKey], encrypts it
// under a key derived from m (bound to userID), and returns both the
// plaintext storage key (for the client to hold) and its encrypted form
// (for the client to hand the server for safekeeping). Run once, during
// registration.
func (m MasterKey) CreateAndEncryptStorageKey(userID uuid.UUID) (StorageKey, EncryptedStorageKey, error) {
	storageKey, err := GenerateStorageKey()
	if err != nil {
		return StorageKey{}, EncryptedStorageKey{}, err
	}

	encrypted, err := m.EncryptStorageKey(storageKey, userID)
	if err != nil {
		return StorageKey{}, EncryptedStorageKey{}, err
	}
	return storageKey, encrypted, nil
}

// EncryptStorageKey encrypts an existing [StorageKey] under a key derived
// from m, bound to userID and the storage-key domain separator.
func (m MasterKey) EncryptStorageKey(storageKey StorageKey, userID uuid.UUID) (EncryptedStorageKey, error) {
	ad := crypto.NewAssociatedData().
		WithBytes(userID[:]).
		WithString(storageKeyDomainSeparator)

	wrapKey, err := m.key.Derive(ad)
	if err != nil {
		return EncryptedStorageKey{}, err
	}
	defer wrapKey.Zeroize()

	enc, err := crypto.Encrypt(wrapKey, storageKey.key.Bytes(), ad)
	if err != nil {
		return EncryptedStorageKey{}, err
	}
	return EncryptedStorageKey{inner: enc}, nil
}

// DecryptStorageKey reverses [MasterKey.EncryptStorageKey].
func (m MasterKey) DecryptStorageKey(encrypted EncryptedStorageKey, userID uuid.UUID) (StorageKey, error) {
	ad := crypto.NewAssociatedData().
		WithBytes(userID[:]).
		WithString(storageKeyDomainSeparator)

	wrapKey, err := m.key.Derive(ad)
	if err != nil {
		return StorageKey{}, err
	}
	defer wrapKey.Zeroize()

	plaintext, err := crypto.Decrypt(wrapKey, encrypted.inner, ad)
	if err != nil {
		return StorageKey{}, err
	}
	defer crypto.Zeroize(plaintext)

	key, err := crypto.KeyFromBytes(plaintext, ad)
	if err != nil {
		return StorageKey{}, err
	}
	return StorageKey{key: key}, nil
}
