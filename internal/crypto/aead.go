// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto implements the cryptographic primitives that every other
// Lock Keeper component is built on: AEAD encryption bound to associated
// data, HKDF key derivation, ECDSA/secp256k1 signing with recoverable
// signatures, Shamir sharding of signing keys, and best-effort zeroization
// of secret-bearing byte slices.
//
// Nothing in this package knows about accounts, sessions, or the wire
// protocol — it only knows about bytes, keys, and associated data. Higher
// layers (internal/keyhierarchy, internal/opaque) give these primitives
// names and domain separators tied to Lock Keeper's key hierarchy.
package crypto

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// EncryptionKeyLength is the size, in bytes, of every AEAD key in the
// system (ChaCha20-Poly1305's native key size).
const EncryptionKeyLength = chacha20poly1305.KeySize

// EncryptionKey is a well-formed ChaCha20-Poly1305 key carrying the
// [AssociatedData] context it was derived or generated for. Operations
// between differently-contexted keys are prevented at the type-hierarchy
// level (internal/keyhierarchy), not here — this type only enforces that
// the key material itself is the right length.
type EncryptionKey struct {
	key     [EncryptionKeyLength]byte
	Context AssociatedData
}

// domainSeparator is the fixed label chained into the context of every AEAD
// key created by [GenerateEncryptionKey], mirroring the source's EncryptionKey::domain_separator.
const domainSeparator = "ChaCha20Poly1305 with 96-bit nonce."

// GenerateEncryptionKey creates a fresh, random AEAD key bound to ctx.
func GenerateEncryptionKey(ctx AssociatedData) (EncryptionKey, error) {
	var key [EncryptionKeyLength]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return EncryptionKey{}, ErrEncryptionFailed
	}
	return EncryptionKey{key: key, Context: ctx.WithString(domainSeparator)}, nil
}

// KeyFromBytes wraps raw key material (which must be exactly
// [EncryptionKeyLength] bytes) with the given context.
func KeyFromBytes(material []byte, ctx AssociatedData) (EncryptionKey, error) {
	if len(material) != EncryptionKeyLength {
		return EncryptionKey{}, ErrInvalidEncryptionKey
	}
	var key [EncryptionKeyLength]byte
	copy(key[:], material)
	return EncryptionKey{key: key, Context: ctx}, nil
}

// Bytes returns a copy of the raw key material. Callers that only need the
// bytes to derive a further key should call [Zeroize] on the result when
// done.
func (k EncryptionKey) Bytes() []byte {
	out := make([]byte, EncryptionKeyLength)
	copy(out, k.key[:])
	return out
}

// Zeroize overwrites the key material in place. Call via defer immediately
// after construction so the key does not outlive the operation it was
// created for.
func (k *EncryptionKey) Zeroize() {
	Zeroize(k.key[:])
}

// Derive runs HKDF-SHA3-256 with no salt, this key's bytes as input key
// material, and ctx as the expand-info, producing a fresh [EncryptionKey]
// bound to ctx. This is the only sanctioned way to turn one key into
// another in Lock Keeper: the master key derives a storage-key-encryption
// key this way, and the OPAQUE export key derives the master key this way.
func (k EncryptionKey) Derive(ctx AssociatedData) (EncryptionKey, error) {
	reader := hkdf.New(sha3.New256, k.key[:], nil, ctx.Bytes())
	var material [EncryptionKeyLength]byte
	if _, err := io.ReadFull(reader, material[:]); err != nil {
		return EncryptionKey{}, ErrKeyDerivationFailed
	}
	return EncryptionKey{key: material, Context: ctx}, nil
}

// DeriveFromBytes runs HKDF-SHA3-256 with no salt over arbitrary-length
// input key material (e.g. an OPAQUE export key, which is not itself a
// well-formed [EncryptionKey]), producing an [EncryptionKey] bound to ctx.
// Use this at the one boundary where key material arrives from outside
// this package's own key types; everywhere else, prefer [EncryptionKey.Derive].
func DeriveFromBytes(ikm []byte, ctx AssociatedData) (EncryptionKey, error) {
	reader := hkdf.New(sha3.New256, ikm, nil, ctx.Bytes())
	var material [EncryptionKeyLength]byte
	if _, err := io.ReadFull(reader, material[:]); err != nil {
		return EncryptionKey{}, ErrKeyDerivationFailed
	}
	return EncryptionKey{key: material, Context: ctx}, nil
}

// Encrypted is a ChaCha20-Poly1305 ciphertext serialized as
// (ciphertext ∥ associated_data ∥ nonce), matching the source's
// `Encrypted<T>` wire shape. The original_type T is erased here; callers
// track what the plaintext represents.
type Encrypted struct {
	Ciphertext     []byte
	AssociatedData AssociatedData
	Nonce          [chacha20poly1305.NonceSize]byte
}

// Encrypt seals plaintext under key, authenticating ad. A fresh 96-bit
// nonce is drawn from the OS CSPRNG for every call.
func Encrypt(key EncryptionKey, plaintext []byte, ad AssociatedData) (Encrypted, error) {
	aead, err := chacha20poly1305.New(key.key[:])
	if err != nil {
		return Encrypted{}, ErrEncryptionFailed
	}

	var nonce [chacha20poly1305.NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return Encrypted{}, ErrEncryptionFailed
	}

	ciphertext := aead.Seal(nil, nonce[:], plaintext, ad.Bytes())
	return Encrypted{Ciphertext: ciphertext, AssociatedData: ad, Nonce: nonce}, nil
}

// Decrypt opens e under key, verifying that e.AssociatedData matches the
// caller-supplied ad before even attempting to open the ciphertext — a
// mismatched associated data is itself a tamper signal.
func Decrypt(key EncryptionKey, e Encrypted, ad AssociatedData) ([]byte, error) {
	if !e.AssociatedData.Equal(ad) {
		return nil, ErrDecryptionFailed
	}

	aead, err := chacha20poly1305.New(key.key[:])
	if err != nil {
		return nil, ErrInvalidEncryptionKey
	}

	plaintext, err := aead.Open(nil, e.Nonce[:], e.Ciphertext, ad.Bytes())
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
