// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ecdsa"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// SigningPrivateKey is an ECDSA private key over secp256k1. Messages are
// digested with Keccak-256 (SHA3, not NIST SHA3) before signing, and
// signatures are recoverable: a verifier can recover the signer's public
// key from (digest, signature) alone.
type SigningPrivateKey struct {
	priv *secp256k1.PrivateKey
}

// GenerateSigningKey draws a fresh, random secp256k1 private scalar.
func GenerateSigningKey() (SigningPrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return SigningPrivateKey{}, ErrEncryptionFailed
	}
	return SigningPrivateKey{priv: priv}, nil
}

// ImportSigningKey deterministically builds a signing key from exactly 32
// raw bytes: the bytes become the private scalar directly, per spec §4.8's
// ImportSigningKey operation. Returns [ErrConversionError] if the bytes do
// not represent a valid, non-zero scalar less than the group order.
func ImportSigningKey(raw []byte) (SigningPrivateKey, error) {
	if len(raw) != 32 {
		return SigningPrivateKey{}, ErrConversionError
	}
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(raw)
	if overflow || scalar.IsZero() {
		return SigningPrivateKey{}, ErrConversionError
	}
	priv := secp256k1.NewPrivateKey(&scalar)
	return SigningPrivateKey{priv: priv}, nil
}

// Bytes returns the 32-byte big-endian encoding of the private scalar.
func (k SigningPrivateKey) Bytes() []byte {
	return k.priv.Serialize()
}

// Zeroize overwrites the private scalar's backing bytes.
func (k *SigningPrivateKey) Zeroize() {
	if k.priv == nil {
		return
	}
	k.priv.Zero()
}

// PublicKey returns the uncompressed public key bytes (65 bytes, 0x04
// prefix), the form [Recover] returns and [ethcrypto.SigToPub] expects.
func (k SigningPrivateKey) PublicKey() []byte {
	return k.priv.PubKey().SerializeUncompressed()
}

// RecoverableSignature is an ECDSA signature over secp256k1 that carries
// enough information (the recovery id v) to recover the signer's public
// key from the digest alone, matching Ethereum's signature convention.
type RecoverableSignature struct {
	R [32]byte
	S [32]byte
	V byte
}

// Digest hashes msg with Keccak-256 (SHA3, Ethereum's variant), the digest
// function [SignBytes] and [Recover] operate over.
func Digest(msg []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(msg)
	return h.Sum(nil)
}

// SignBytes signs the Keccak-256 digest of msg and returns a recoverable
// signature.
func (k SigningPrivateKey) SignBytes(msg []byte) (RecoverableSignature, error) {
	digest := Digest(msg)
	ecdsaPriv := k.toECDSA()
	sig, err := ethcrypto.Sign(digest, ecdsaPriv)
	if err != nil {
		return RecoverableSignature{}, ErrEncryptionFailed
	}

	var out RecoverableSignature
	copy(out.R[:], sig[0:32])
	copy(out.S[:], sig[32:64])
	out.V = sig[64]
	return out, nil
}

// Recover recovers the signer's uncompressed public key from sig and the
// Keccak-256 digest of msg. Returns [ErrSignatureVerificationFailed] if the
// signature is malformed or does not recover to a valid point.
func Recover(msg []byte, sig RecoverableSignature) ([]byte, error) {
	digest := Digest(msg)
	raw := make([]byte, 65)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V

	pub, err := ethcrypto.SigToPub(digest, raw)
	if err != nil {
		return nil, ErrSignatureVerificationFailed
	}
	return ethcrypto.FromECDSAPub(pub), nil
}

// Verify checks sig against msg and the given uncompressed public key
// without using the recovery id.
func Verify(msg []byte, sig RecoverableSignature, pubKey []byte) bool {
	digest := Digest(msg)
	return ethcrypto.VerifySignature(pubKey, digest, append(append([]byte{}, sig.R[:]...), sig.S[:]...))
}

func (k SigningPrivateKey) toECDSA() *ecdsa.PrivateKey {
	return k.priv.ToECDSA()
}
