// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

// Sentinel errors for the cryptographic primitives layer (spec §7,
// "Cryptographic errors"). Handlers that see one of these must not leak
// which step failed to the client — see internal/lockkeeperpb/status.go.
var (
	// ErrEncryptionFailed is returned when an AEAD seal operation fails.
	// In practice this should only happen if the underlying cipher
	// construction itself failed (e.g. a malformed key length).
	ErrEncryptionFailed = errors.New("crypto: encryption failed")

	// ErrDecryptionFailed is returned when an AEAD open operation fails,
	// i.e. the authentication tag did not verify. This happens whenever the
	// key, associated data, or ciphertext has been altered or is simply
	// wrong (e.g. a wrong password derived a different key).
	ErrDecryptionFailed = errors.New("crypto: decryption failed")

	// ErrKeyDerivationFailed is returned when HKDF-Expand fails. This
	// should never happen for fixed, hard-coded output lengths.
	ErrKeyDerivationFailed = errors.New("crypto: key derivation failed")

	// ErrConversionError is returned when a serialized byte blob cannot be
	// parsed back into its typed representation (wrong length, bad framing,
	// or an unexpected domain separator prefix).
	ErrConversionError = errors.New("crypto: conversion error")

	// ErrInvalidEncryptionKey is returned when a key is presented with an
	// unexpected length for its cipher.
	ErrInvalidEncryptionKey = errors.New("crypto: invalid encryption key")

	// ErrSignatureVerificationFailed is returned when an ECDSA signature
	// does not verify against the given digest and public key.
	ErrSignatureVerificationFailed = errors.New("crypto: signature verification failed")

	// ErrShardingFailed is returned when Shamir splitting or reconstruction
	// fails (e.g. too few shards, or shards that do not reconstruct to a
	// valid non-zero scalar).
	ErrShardingFailed = errors.New("crypto: sharding failed")
)
