// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keyhierarchy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

func TestMasterKeyDerivationIsDeterministic(t *testing.T) {
	exportKey1 := mustRandomBytes(t, 64)
	exportKey2 := append([]byte{}, exportKey1...)

	mk1, err := DeriveMasterKey(exportKey1)
	require.NoError(t, err)
	mk2, err := DeriveMasterKey(exportKey2)
	require.NoError(t, err)

	userID := uuid.New()
	storageKey, err := GenerateStorageKey()
	require.NoError(t, err)

	enc1, err := mk1.EncryptStorageKey(storageKey, userID)
	require.NoError(t, err)
	decrypted, err := mk2.DecryptStorageKey(enc1, userID)
	require.NoError(t, err)
	require.Equal(t, storageKey.key.Bytes(), decrypted.key.Bytes())
}

func TestMasterKeyDerivationDependsOnExportKey(t *testing.T) {
	mk1, err := DeriveMasterKey(mustRandomBytes(t, 64))
	require.NoError(t, err)
	mk2, err := DeriveMasterKey(mustRandomBytes(t, 64))
	require.NoError(t, err)

	userID := uuid.New()
	storageKey, err := GenerateStorageKey()
	require.NoError(t, err)

	enc, err := mk1.EncryptStorageKey(storageKey, userID)
	require.NoError(t, err)
	_, err = mk2.DecryptStorageKey(enc, userID)
	require.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestStorageKeyWrapUnwrapRoundTrip(t *testing.T) {
	userID := uuid.New()
	masterKey, err := DeriveMasterKey(mustRandomBytes(t, 64))
	require.NoError(t, err)

	storageKey, encrypted, err := masterKey.CreateAndEncryptStorageKey(userID)
	require.NoError(t, err)

	raw, err := encrypted.MarshalBinary()
	require.NoError(t, err)
	parsed, err := UnmarshalEncryptedStorageKey(raw)
	require.NoError(t, err)

	recovered, err := masterKey.DecryptStorageKey(parsed, userID)
	require.NoError(t, err)
	require.Equal(t, storageKey.key.Bytes(), recovered.key.Bytes())
}

func TestSecretEncryptDecryptRoundTrip(t *testing.T) {
	userID := uuid.New()
	storageKey, err := GenerateStorageKey()
	require.NoError(t, err)
	keyID, err := GenerateKeyID(userID)
	require.NoError(t, err)

	secret, err := GenerateSecret()
	require.NoError(t, err)

	encrypted, err := storageKey.EncryptSecret(secret, userID, keyID)
	require.NoError(t, err)

	decrypted, err := storageKey.DecryptSecret(encrypted, userID, keyID)
	require.NoError(t, err)
	require.Equal(t, secret.Bytes(), decrypted.Bytes())
}

func TestSecretDecryptFailsForWrongKeyID(t *testing.T) {
	userID := uuid.New()
	storageKey, err := GenerateStorageKey()
	require.NoError(t, err)
	keyID, err := GenerateKeyID(userID)
	require.NoError(t, err)
	otherKeyID, err := GenerateKeyID(userID)
	require.NoError(t, err)

	secret, err := GenerateSecret()
	require.NoError(t, err)
	encrypted, err := storageKey.EncryptSecret(secret, userID, keyID)
	require.NoError(t, err)

	_, err = storageKey.DecryptSecret(encrypted, userID, otherKeyID)
	require.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestRemoteStorageKeySessionKeyRoundTrip(t *testing.T) {
	remoteStorageKey, err := GenerateRemoteStorageKey()
	require.NoError(t, err)

	sessionKey, err := SessionKeyFromOpaqueOutput(mustRandomBytes(t, 64))
	require.NoError(t, err)

	encrypted, err := remoteStorageKey.EncryptSessionKey(sessionKey)
	require.NoError(t, err)

	raw, err := encrypted.MarshalBinary()
	require.NoError(t, err)
	parsed, err := UnmarshalEncryptedSessionKey(raw)
	require.NoError(t, err)

	recovered, err := remoteStorageKey.DecryptSessionKey(parsed)
	require.NoError(t, err)
	require.Equal(t, sessionKey.key.Bytes(), recovered.key.Bytes())
}

func TestSigningKeyShardRebuildRoundTrip(t *testing.T) {
	userID := uuid.New()
	remoteStorageKey, err := GenerateRemoteStorageKey()
	require.NoError(t, err)

	pair, err := RemoteGenerateSigningKey(userID)
	require.NoError(t, err)
	original := append([]byte{}, pair.Private.Bytes()...)

	shards, err := pair.ShardForRemoteStorage(remoteStorageKey)
	require.NoError(t, err)

	rebuilt, err := RebuildSigningKeyFromShards(shards, remoteStorageKey, pair.KeyID)
	require.NoError(t, err)
	require.Equal(t, original, rebuilt.Private.Bytes())
	require.Equal(t, pair.KeyID, rebuilt.KeyID)
}

func TestSigningKeyClientEncryptDecryptRoundTrip(t *testing.T) {
	userID := uuid.New()
	storageKey, err := GenerateStorageKey()
	require.NoError(t, err)

	pair, err := ImportSigningKey(mustRandomBytes32(t), userID)
	require.NoError(t, err)

	encrypted, err := pair.EncryptSigningKey(storageKey, userID)
	require.NoError(t, err)

	recovered, err := DecryptSigningKey(encrypted, storageKey, userID, pair.KeyID)
	require.NoError(t, err)
	require.Equal(t, pair.Private.Bytes(), recovered.Private.Bytes())
}

func mustRandomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b, err := crypto.RandomBytes(n)
	require.NoError(t, err)
	return b
}

func mustRandomBytes32(t *testing.T) []byte {
	t.Helper()
	for {
		b := mustRandomBytes(t, 32)
		if _, err := crypto.ImportSigningKey(b); err == nil {
			return b
		}
	}
}
