// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package opaque

import (
	ristretto "github.com/gtank/ristretto255"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// envelopePlaintext is the client static keypair plus the server's static
// public key, the value occlude calls ciphertextData: sealing Ps alongside
// (pu, Pu) lets the client recover its own identity and authenticate the
// server's identity from one decrypt, without a second round trip.
type envelopePlaintext struct {
	pu *ristretto.Scalar
	Pu *ristretto.Element
	Ps *ristretto.Element
}

func (p envelopePlaintext) marshal() []byte {
	out := make([]byte, 0, 96)
	out = append(out, p.pu.Encode(nil)...)
	out = append(out, p.Pu.Encode(nil)...)
	out = append(out, p.Ps.Encode(nil)...)
	return out
}

func unmarshalEnvelopePlaintext(b []byte) (envelopePlaintext, error) {
	if len(b) != 96 {
		return envelopePlaintext{}, apperr.New(apperr.KindConversionError)
	}

	pu := new(ristretto.Scalar)
	if err := pu.Decode(b[:32]); err != nil {
		return envelopePlaintext{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	Pu := new(ristretto.Element)
	if err := Pu.Decode(b[32:64]); err != nil {
		return envelopePlaintext{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	Ps := new(ristretto.Element)
	if err := Ps.Decode(b[64:96]); err != nil {
		return envelopePlaintext{}, apperr.Wrap(apperr.KindConversionError, err)
	}

	return envelopePlaintext{pu: pu, Pu: Pu, Ps: Ps}, nil
}

// envelopeAssociatedData binds the envelope ciphertext to the account
// name it belongs to, so an envelope cannot be replayed against a
// different account even if an attacker could forge the cipherKey.
func envelopeAssociatedData(accountName string) crypto.AssociatedData {
	return crypto.NewAssociatedData().WithString("Lock Keeper OPAQUE envelope").WithString(accountName)
}

// sealEnvelope encrypts plaintext under cipherKey (derived from the
// registration-time OPRF output), authenticating accountName.
func sealEnvelope(cipherKey []byte, accountName string, plaintext envelopePlaintext) (crypto.Encrypted, error) {
	key, err := crypto.KeyFromBytes(cipherKey, envelopeAssociatedData(accountName))
	if err != nil {
		return crypto.Encrypted{}, apperr.Wrap(apperr.KindInvalidEncryptionKey, err)
	}
	defer key.Zeroize()

	sealed, err := crypto.Encrypt(key, plaintext.marshal(), envelopeAssociatedData(accountName))
	if err != nil {
		return crypto.Encrypted{}, apperr.Wrap(apperr.KindEncryptionFailed, err)
	}
	return sealed, nil
}

// openEnvelope decrypts e under cipherKey (re-derived at login time from
// the same OPRF output the client obtains by completing the exchange),
// verifying accountName. Failure here means a wrong password.
func openEnvelope(cipherKey []byte, accountName string, e crypto.Encrypted) (envelopePlaintext, error) {
	key, err := crypto.KeyFromBytes(cipherKey, envelopeAssociatedData(accountName))
	if err != nil {
		return envelopePlaintext{}, apperr.Wrap(apperr.KindInvalidEncryptionKey, err)
	}
	defer key.Zeroize()

	plaintext, err := crypto.Decrypt(key, e, envelopeAssociatedData(accountName))
	if err != nil {
		return envelopePlaintext{}, apperr.New(apperr.KindInvalidLogin)
	}

	return unmarshalEnvelopePlaintext(plaintext)
}
