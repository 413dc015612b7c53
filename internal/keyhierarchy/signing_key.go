// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keyhierarchy

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// SigningKeyPair bundles a secp256k1 signing key with the identity it is
// bound to. Holding both together prevents a key from one account's shards
// being reconstructed and attributed to another.
type SigningKeyPair struct {
	Private crypto.SigningPrivateKey
	KeyID   KeyID
}

// ImportSigningKey wraps client-supplied key material (ImportSigningKey
// operation, spec §4.8) as a [SigningKeyPair] under a freshly generated
// [KeyID].
func ImportSigningKey(raw []byte, userID uuid.UUID) (SigningKeyPair, error) {
	priv, err := crypto.ImportSigningKey(raw)
	if err != nil {
		return SigningKeyPair{}, err
	}
	keyID, err := GenerateKeyID(userID)
	if err != nil {
		return SigningKeyPair{}, err
	}
	return SigningKeyPair{Private: priv, KeyID: keyID}, nil
}

// RemoteGenerateSigningKey draws a fresh signing key entirely server-side
// (RemoteGenerateSigningKey operation, spec §4.8); the client never learns
// the private scalar, only the resulting public key and key ID.
func RemoteGenerateSigningKey(userID uuid.UUID) (SigningKeyPair, error) {
	priv, err := crypto.GenerateSigningKey()
	if err != nil {
		return SigningKeyPair{}, err
	}
	keyID, err := GenerateKeyID(userID)
	if err != nil {
		return SigningKeyPair{}, err
	}
	return SigningKeyPair{Private: priv, KeyID: keyID}, nil
}

// Zeroize overwrites the underlying private scalar.
func (p *SigningKeyPair) Zeroize() {
	p.Private.Zeroize()
}

// ShardForRemoteStorage splits p's private key into [crypto.NumShards]
// Shamir shards sealed under the server's remote storage key, the form a
// remote-generated signing key is held in at rest so no single stored
// record contains the whole private scalar.
func (p SigningKeyPair) ShardForRemoteStorage(remoteStorageKey RemoteStorageKey) ([]crypto.EncryptedShard, error) {
	sealKey, err := remoteStorageKeySealKey(remoteStorageKey, p.KeyID)
	if err != nil {
		return nil, err
	}
	return crypto.ShardSigningKey(p.Private, sealKey)
}

// RebuildSigningKeyFromShards reverses [SigningKeyPair.ShardForRemoteStorage].
func RebuildSigningKeyFromShards(shards []crypto.EncryptedShard, remoteStorageKey RemoteStorageKey, keyID KeyID) (SigningKeyPair, error) {
	sealKey, err := remoteStorageKeySealKey(remoteStorageKey, keyID)
	if err != nil {
		return SigningKeyPair{}, err
	}
	priv, err := crypto.RebuildSigningKeyFromShards(shards, sealKey)
	if err != nil {
		return SigningKeyPair{}, err
	}
	return SigningKeyPair{Private: priv, KeyID: keyID}, nil
}

// EncryptedSigningKey is a signing key's raw private scalar sealed under a
// client's [StorageKey], as distinct from the Shamir shards the server
// keeps under its own [RemoteStorageKey] for [RemoteSignBytes]. The
// server's RetrieveSigningKey and ExportSigningKey operations return the
// shard blob and the raw scalar respectively, not this form.
type EncryptedSigningKey struct {
	inner crypto.Encrypted
}

// EncryptSigningKey seals p's private key bytes under storageKey, bound to
// userID and p's key ID.
func (p SigningKeyPair) EncryptSigningKey(storageKey StorageKey, userID uuid.UUID) (EncryptedSigningKey, error) {
	ad := signingKeyAssociatedData(userID, p.KeyID)
	enc, err := crypto.Encrypt(storageKey.key, p.Private.Bytes(), ad)
	if err != nil {
		return EncryptedSigningKey{}, err
	}
	return EncryptedSigningKey{inner: enc}, nil
}

// DecryptSigningKey reverses [SigningKeyPair.EncryptSigningKey].
func DecryptSigningKey(encrypted EncryptedSigningKey, storageKey StorageKey, userID uuid.UUID, keyID KeyID) (SigningKeyPair, error) {
	ad := signingKeyAssociatedData(userID, keyID)
	plaintext, err := crypto.Decrypt(storageKey.key, encrypted.inner, ad)
	if err != nil {
		return SigningKeyPair{}, err
	}
	defer crypto.Zeroize(plaintext)

	priv, err := crypto.ImportSigningKey(plaintext)
	if err != nil {
		return SigningKeyPair{}, err
	}
	return SigningKeyPair{Private: priv, KeyID: keyID}, nil
}

// MarshalBinary serializes the encrypted signing key for storage or the wire.
func (e EncryptedSigningKey) MarshalBinary() ([]byte, error) {
	return e.inner.MarshalBinary()
}

// UnmarshalEncryptedSigningKey parses the format produced by
// [EncryptedSigningKey.MarshalBinary].
func UnmarshalEncryptedSigningKey(b []byte) (EncryptedSigningKey, error) {
	inner, err := crypto.UnmarshalEncrypted(b)
	if err != nil {
		return EncryptedSigningKey{}, err
	}
	return EncryptedSigningKey{inner: inner}, nil
}

// MarshalShards serializes [NumShards] encrypted shards into the single
// blob [StoredSecret.EncryptedPayload] holds for a server-generated
// signing key: a length-prefixed concatenation of each shard's nonce and
// ciphertext.
func MarshalShards(shards []crypto.EncryptedShard) []byte {
	out := make([]byte, 0, 128*len(shards))
	var lenBuf [4]byte
	for _, shard := range shards {
		out = append(out, shard.Nonce[:]...)
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(shard.Ciphertext)))
		out = append(out, lenBuf[:]...)
		out = append(out, shard.Ciphertext...)
	}
	return out
}

// UnmarshalShards parses the format produced by [MarshalShards].
func UnmarshalShards(b []byte) ([]crypto.EncryptedShard, error) {
	var shards []crypto.EncryptedShard
	for len(b) > 0 {
		if len(b) < 16 {
			return nil, crypto.ErrConversionError
		}
		var shard crypto.EncryptedShard
		copy(shard.Nonce[:], b[:12])
		n := binary.BigEndian.Uint32(b[12:16])
		b = b[16:]
		if uint32(len(b)) < n {
			return nil, crypto.ErrConversionError
		}
		shard.Ciphertext = append([]byte(nil), b[:n]...)
		b = b[n:]
		shards = append(shards, shard)
	}
	return shards, nil
}

func signingKeyAssociatedData(userID uuid.UUID, keyID KeyID) crypto.AssociatedData {
	return crypto.NewAssociatedData().
		WithBytes(userID[:]).
		WithBytes(keyID.Bytes()).
		WithString("Lock Keeper signing key")
}

// remoteStorageKeySealKey derives a per-key-ID seal key from the server's
// remote storage key, so compromising one signing key's shards does not
// help an attacker open another's.
func remoteStorageKeySealKey(remoteStorageKey RemoteStorageKey, keyID KeyID) (crypto.SealKey, error) {
	ad := crypto.NewAssociatedData().
		WithBytes(keyID.Bytes()).
		WithString("Lock Keeper signing key shard seal")
	derivedKey, err := crypto.DeriveFromBytes(remoteStorageKey.Bytes(), ad)
	if err != nil {
		return crypto.SealKey{}, err
	}
	return crypto.SealKeyFromBytes(derivedKey.Bytes())
}
