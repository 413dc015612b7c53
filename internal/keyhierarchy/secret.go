// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keyhierarchy

import (
	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// secretLength is the fixed size, in bytes, of every generated [Secret]
// (spec §4.3: GenerateSecret always produces 32 bytes of randomness).
const secretLength = 32

// Secret is an arbitrary 32-byte value, either generated by the client
// (CreateSecret) or by the server on the client's behalf (GenerateSecret).
// It is opaque payload data from the key hierarchy's point of view — only
// [StorageKey] knows how to seal and open it.
type Secret struct {
	bytes []byte
}

// GenerateSecret draws fresh, random secret material.
func GenerateSecret() (Secret, error) {
	b, err := crypto.RandomBytes(secretLength)
	if err != nil {
		return Secret{}, err
	}
	return Secret{bytes: b}, nil
}

// SecretFromBytes wraps arbitrary bytes as a [Secret]. Used when importing
// client-supplied secret material and when decrypting a stored one.
func SecretFromBytes(b []byte) Secret {
	return Secret{bytes: append([]byte{}, b...)}
}

// Bytes returns the raw secret material.
func (s Secret) Bytes() []byte {
	return s.bytes
}

// Zeroize overwrites the secret's material.
func (s *Secret) Zeroize() {
	crypto.Zeroize(s.bytes)
}

// EncryptedSecret is a [Secret] sealed under a [StorageKey].
type EncryptedSecret struct {
	inner crypto.Encrypted
}

// MarshalBinary serializes the encrypted secret for storage or the wire.
func (e EncryptedSecret) MarshalBinary() ([]byte, error) {
	return e.inner.MarshalBinary()
}

// UnmarshalEncryptedSecret parses the format produced by
// [EncryptedSecret.MarshalBinary].
func UnmarshalEncryptedSecret(b []byte) (EncryptedSecret, error) {
	inner, err := crypto.UnmarshalEncrypted(b)
	if err != nil {
		return EncryptedSecret{}, err
	}
	return EncryptedSecret{inner: inner}, nil
}

// secretAssociatedData builds the domain-separated context every secret is
// encrypted and decrypted under, binding the ciphertext to the account and
// key ID it belongs to.
func secretAssociatedData(userID uuid.UUID, keyID KeyID) crypto.AssociatedData {
	return crypto.NewAssociatedData().
		WithBytes(userID[:]).
		WithBytes(keyID.Bytes()).
		WithString("Lock Keeper arbitrary secret")
}
