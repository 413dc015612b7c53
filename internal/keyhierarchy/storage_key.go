// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keyhierarchy

import (
	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// storageKeyDomainSeparator binds a [StorageKey]'s wire/derivation context.
const storageKeyDomainSeparator = "OPAQUE-derived Lock Keeper storage key"

// StorageKey is a client-held symmetric key used to encrypt every secret
// and data blob the account stores. The server only ever sees it in its
// [EncryptedStorageKey] form, sealed under a key derived from the client's
// [MasterKey]; the server cannot derive the wrapping key itself because
// the master key never leaves the client.
type StorageKey struct {
	key crypto.EncryptionKey
}

// GenerateStorageKey draws a fresh, random storage key.
func GenerateStorageKey() (StorageKey, error) {
	ctx := crypto.NewAssociatedData().WithString(storageKeyDomainSeparator)
	key, err := crypto.GenerateEncryptionKey(ctx)
	if err != nil {
		return StorageKey{}, err
	}
	return StorageKey{key: key}, nil
}

// Zeroize overwrites the storage key's material.
func (s *StorageKey) Zeroize() {
	s.key.Zeroize()
}

// EncryptSecret seals a [Secret] under s, bound to userID and keyID so
// the ciphertext cannot be replayed under another secret's identity.
func (s StorageKey) EncryptSecret(secret Secret, userID uuid.UUID, keyID KeyID) (EncryptedSecret, error) {
	ad := secretAssociatedData(userID, keyID)
	enc, err := crypto.Encrypt(s.key, secret.Bytes(), ad)
	if err != nil {
		return EncryptedSecret{}, err
	}
	return EncryptedSecret{inner: enc}, nil
}

// DecryptSecret reverses [StorageKey.EncryptSecret].
func (s StorageKey) DecryptSecret(encrypted EncryptedSecret, userID uuid.UUID, keyID KeyID) (Secret, error) {
	ad := secretAssociatedData(userID, keyID)
	plaintext, err := crypto.Decrypt(s.key, encrypted.inner, ad)
	if err != nil {
		return Secret{}, err
	}
	return SecretFromBytes(plaintext), nil
}

// EncryptedStorageKey is a [StorageKey] sealed under a key derived from the
// client's [MasterKey]. This is the only form of the storage key the
// server is ever allowed to hold.
type EncryptedStorageKey struct {
	inner crypto.Encrypted
}

// MarshalBinary serializes the encrypted storage key for storage or the wire.
func (e EncryptedStorageKey) MarshalBinary() ([]byte, error) {
	return e.inner.MarshalBinary()
}

// UnmarshalEncryptedStorageKey parses the format produced by
// [EncryptedStorageKey.MarshalBinary].
func UnmarshalEncryptedStorageKey(b []byte) (EncryptedStorageKey, error) {
	inner, err := crypto.UnmarshalEncrypted(b)
	if err != nil {
		return EncryptedStorageKey{}, err
	}
	return EncryptedStorageKey{inner: inner}, nil
}
