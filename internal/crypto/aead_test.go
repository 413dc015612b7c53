// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ctx := NewAssociatedData().WithString("test-key")
	key, err := GenerateEncryptionKey(ctx)
	require.NoError(t, err)

	ad := NewAssociatedData().WithString("some associated data")
	plaintext := []byte("the quick brown fox")

	enc, err := Encrypt(key, plaintext, ad)
	require.NoError(t, err)

	decrypted, err := Decrypt(key, enc, ad)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestDecryptFailsOnAlteredCiphertext(t *testing.T) {
	ctx := NewAssociatedData().WithString("test-key")
	key, err := GenerateEncryptionKey(ctx)
	require.NoError(t, err)
	ad := NewAssociatedData()

	enc, err := Encrypt(key, []byte("payload"), ad)
	require.NoError(t, err)

	enc.Ciphertext[0] ^= 0xFF
	_, err = Decrypt(key, enc, ad)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptFailsOnWrongAssociatedData(t *testing.T) {
	ctx := NewAssociatedData().WithString("test-key")
	key, err := GenerateEncryptionKey(ctx)
	require.NoError(t, err)

	enc, err := Encrypt(key, []byte("payload"), NewAssociatedData().WithString("a"))
	require.NoError(t, err)

	_, err = Decrypt(key, enc, NewAssociatedData().WithString("b"))
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptFailsOnWrongKey(t *testing.T) {
	ad := NewAssociatedData()
	key1, err := GenerateEncryptionKey(NewAssociatedData().WithString("k1"))
	require.NoError(t, err)
	key2, err := GenerateEncryptionKey(NewAssociatedData().WithString("k2"))
	require.NoError(t, err)

	enc, err := Encrypt(key1, []byte("payload"), ad)
	require.NoError(t, err)

	_, err = Decrypt(key2, enc, ad)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptedWireRoundTrip(t *testing.T) {
	ctx := NewAssociatedData().WithString("test-key")
	key, err := GenerateEncryptionKey(ctx)
	require.NoError(t, err)
	ad := NewAssociatedData().WithString("ad")

	enc, err := Encrypt(key, []byte("payload"), ad)
	require.NoError(t, err)

	raw, err := enc.MarshalBinary()
	require.NoError(t, err)

	parsed, err := UnmarshalEncrypted(raw)
	require.NoError(t, err)

	plaintext, err := Decrypt(key, parsed, ad)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), plaintext)
}

func TestDeriveIsDeterministic(t *testing.T) {
	ctx := NewAssociatedData().WithString("source")
	source, err := GenerateEncryptionKey(ctx)
	require.NoError(t, err)

	derivedCtx := NewAssociatedData().WithString("derived-1")
	d1, err := source.Derive(derivedCtx)
	require.NoError(t, err)
	d2, err := source.Derive(derivedCtx)
	require.NoError(t, err)
	require.Equal(t, d1.Bytes(), d2.Bytes())

	otherCtx := NewAssociatedData().WithString("derived-2")
	d3, err := source.Derive(otherCtx)
	require.NoError(t, err)
	require.NotEqual(t, d1.Bytes(), d3.Bytes())
}
