// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package keyhierarchy gives Lock Keeper's raw AEAD keys (internal/crypto)
// names and a fixed tier structure: an OPAQUE export key derives a client-
// only master key, which derives (and encrypts) a client-held storage key;
// a server-only remote storage key encrypts session keys and data blobs at
// rest. Every tier is its own Go type so a key from one tier can never be
// passed where another tier is expected.
package keyhierarchy

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/rkhiriev/lock-keeper/internal/crypto"
	"github.com/rkhiriev/lock-keeper/internal/domain"
)

// keyIDLength is the size, in bytes, of every [KeyID].
const keyIDLength = 32

// KeyID uniquely identifies one stored secret or signing key within an
// account. It is generated by the server, never by the client.
type KeyID [keyIDLength]byte

// GenerateKeyID derives a fresh KeyID from fresh randomness and userID,
// so an observer cannot predict IDs issued to other accounts even after
// seeing many IDs for their own.
func GenerateKeyID(userID uuid.UUID) (KeyID, error) {
	randomness, err := crypto.RandomBytes(keyIDLength)
	if err != nil {
		return KeyID{}, err
	}

	h := sha3.New256()
	h.Write([]byte("Lock Keeper key ID"))
	h.Write(userID[:])
	h.Write(randomness)

	var id KeyID
	copy(id[:], h.Sum(nil))
	return id, nil
}

// KeyIDFromBytes validates and wraps a 32-byte key ID.
func KeyIDFromBytes(b []byte) (KeyID, error) {
	if len(b) != keyIDLength {
		return KeyID{}, crypto.ErrConversionError
	}
	var id KeyID
	copy(id[:], b)
	return id, nil
}

// Bytes returns the raw 32 bytes of the key ID.
func (id KeyID) Bytes() []byte {
	return id[:]
}

// String renders the key ID as hex, for logging and as a map/SQL key.
func (id KeyID) String() string {
	return hex.EncodeToString(id[:])
}

// GoString supports %#v in debug output without ever showing secret data —
// a KeyID isn't secret, but this keeps it consistent with the other
// hierarchy types' GoString methods.
func (id KeyID) GoString() string {
	return fmt.Sprintf("KeyID(%s)", id.String())
}

// ToDomain converts id to its storage-layer representation.
func (id KeyID) ToDomain() domain.KeyIDBytes {
	return domain.KeyIDBytes(id)
}

// KeyIDFromDomain converts a storage-layer key id back to a [KeyID].
func KeyIDFromDomain(b domain.KeyIDBytes) KeyID {
	return KeyID(b)
}
