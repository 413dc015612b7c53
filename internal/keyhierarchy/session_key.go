// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keyhierarchy

import "github.com/rkhiriev/lock-keeper/internal/crypto"

// sessionKeyDomainSeparator binds the shared OPAQUE output to its one use:
// encrypting channel frames for the lifetime of one authenticated session.
const sessionKeyDomainSeparator = "OPAQUE-derived Lock Keeper session key"

// SessionKey is the shared secret both client and server derive from a
// successful OPAQUE handshake. It must not outlive the session it was
// produced for and must never be persisted — internal/channel holds one
// per open connection and discards it on close.
type SessionKey struct {
	key crypto.EncryptionKey
}

// opaqueSessionKeyOutputLength is OPAQUE's raw shared-output size; only the
// first [crypto.EncryptionKeyLength] bytes of it serve as the AEAD key.
const opaqueSessionKeyOutputLength = 64

// SessionKeyFromOpaqueOutput wraps the raw 64-byte shared secret OPAQUE
// produces (internal/opaque) as a [SessionKey], using its first 32 bytes as
// AEAD key material. Both client and server call this with the identical
// bytes, independently derived.
func SessionKeyFromOpaqueOutput(raw []byte) (SessionKey, error) {
	if len(raw) != opaqueSessionKeyOutputLength {
		return SessionKey{}, crypto.ErrConversionError
	}
	ctx := crypto.NewAssociatedData().WithString(sessionKeyDomainSeparator)
	key, err := crypto.KeyFromBytes(raw[:crypto.EncryptionKeyLength], ctx)
	if err != nil {
		return SessionKey{}, err
	}
	return SessionKey{key: key}, nil
}

// Zeroize overwrites the session key's material.
func (s *SessionKey) Zeroize() {
	s.key.Zeroize()
}

// EncryptFrame seals one channel frame under s.
func (s SessionKey) EncryptFrame(plaintext []byte) (crypto.Encrypted, error) {
	return crypto.Encrypt(s.key, plaintext, crypto.NewAssociatedData())
}

// DecryptFrame reverses [SessionKey.EncryptFrame].
func (s SessionKey) DecryptFrame(e crypto.Encrypted) ([]byte, error) {
	return crypto.Decrypt(s.key, e, crypto.NewAssociatedData())
}

// remoteStorageKeyDomainSeparator binds the server-only key to its one use.
const remoteStorageKeyDomainSeparator = "Lock Keeper remote storage key"

// RemoteStorageKey is a server-only symmetric key, independent of the
// client's master/storage key chain, used to encrypt session keys and
// other server-side data blobs (e.g. a remote-generated signing key's
// shards) at rest. It is provisioned once at server setup and never
// derived from anything client-controlled.
type RemoteStorageKey struct {
	key crypto.EncryptionKey
}

// GenerateRemoteStorageKey draws a fresh, random remote storage key. Run
// once, at server provisioning time; the result must be persisted
// (internal/config) across restarts or every open session becomes
// undecryptable.
func GenerateRemoteStorageKey() (RemoteStorageKey, error) {
	ctx := crypto.NewAssociatedData().WithString(remoteStorageKeyDomainSeparator)
	key, err := crypto.GenerateEncryptionKey(ctx)
	if err != nil {
		return RemoteStorageKey{}, err
	}
	return RemoteStorageKey{key: key}, nil
}

// RemoteStorageKeyFromBytes wraps previously-provisioned key material.
func RemoteStorageKeyFromBytes(material []byte) (RemoteStorageKey, error) {
	ctx := crypto.NewAssociatedData().WithString(remoteStorageKeyDomainSeparator)
	key, err := crypto.KeyFromBytes(material, ctx)
	if err != nil {
		return RemoteStorageKey{}, err
	}
	return RemoteStorageKey{key: key}, nil
}

// Bytes returns the raw key material, for provisioning storage only.
func (r RemoteStorageKey) Bytes() []byte {
	return r.key.Bytes()
}

// Zeroize overwrites the remote storage key's material.
func (r *RemoteStorageKey) Zeroize() {
	r.key.Zeroize()
}

// EncryptSessionKey seals sessionKey's raw bytes under r, server-side,
// immediately after an OPAQUE login completes.
func (r RemoteStorageKey) EncryptSessionKey(sessionKey SessionKey) (EncryptedSessionKey, error) {
	ad := crypto.NewAssociatedData().WithString(sessionKeyDomainSeparator)
	enc, err := crypto.Encrypt(r.key, sessionKey.key.Bytes(), ad)
	if err != nil {
		return EncryptedSessionKey{}, err
	}
	return EncryptedSessionKey{inner: enc}, nil
}

// DecryptSessionKey reverses [RemoteStorageKey.EncryptSessionKey].
func (r RemoteStorageKey) DecryptSessionKey(encrypted EncryptedSessionKey) (SessionKey, error) {
	ad := crypto.NewAssociatedData().WithString(sessionKeyDomainSeparator)
	plaintext, err := crypto.Decrypt(r.key, encrypted.inner, ad)
	if err != nil {
		return SessionKey{}, err
	}
	defer crypto.Zeroize(plaintext)

	key, err := crypto.KeyFromBytes(plaintext, ad)
	if err != nil {
		return SessionKey{}, err
	}
	return SessionKey{key: key}, nil
}

// EncryptedSessionKey is a [SessionKey] sealed under the server's
// [RemoteStorageKey], the form the session cache stores at rest.
type EncryptedSessionKey struct {
	inner crypto.Encrypted
}

// MarshalBinary serializes the encrypted session key for the session cache.
func (e EncryptedSessionKey) MarshalBinary() ([]byte, error) {
	return e.inner.MarshalBinary()
}

// UnmarshalEncryptedSessionKey parses the format produced by
// [EncryptedSessionKey.MarshalBinary].
func UnmarshalEncryptedSessionKey(b []byte) (EncryptedSessionKey, error) {
	inner, err := crypto.UnmarshalEncrypted(b)
	if err != nil {
		return EncryptedSessionKey{}, err
	}
	return EncryptedSessionKey{inner: inner}, nil
}
