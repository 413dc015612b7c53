// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
)

// NumShards and ShardThreshold fix Lock Keeper's Shamir parameters: a
// signing key is always split into exactly 3 shards, and all 3 are
// required to reconstruct it (n=3, k=3; spec §4.1).
const (
	NumShards      = 3
	ShardThreshold = 3
	SealKeyLength  = 32
)

// SealKey wraps each encrypted shard with AES-256-GCM.
type SealKey struct {
	material [SealKeyLength]byte
}

// SealKeyFromBytes validates and wraps raw seal-key material.
func SealKeyFromBytes(material []byte) (SealKey, error) {
	if len(material) != SealKeyLength {
		return SealKey{}, ErrInvalidEncryptionKey
	}
	var k SealKey
	copy(k.material[:], material)
	return k, nil
}

// EncryptedShard is one Shamir shard of a signing key's private scalar,
// sealed under a [SealKey] with AES-256-GCM.
type EncryptedShard struct {
	Ciphertext []byte
	Nonce      [12]byte
}

// ShardSigningKey splits priv's 32-byte scalar into [NumShards] Shamir
// shards over GF(256) (threshold [ShardThreshold]) and seals each shard
// under sealKey. The temporary copy of priv's scalar bytes is zeroized once
// it has been split; priv itself is left intact.
func ShardSigningKey(priv SigningPrivateKey, sealKey SealKey) ([]EncryptedShard, error) {
	secret := priv.Bytes()
	defer Zeroize(secret)

	shares, err := splitShamir(secret, NumShards, ShardThreshold)
	if err != nil {
		return nil, ErrShardingFailed
	}

	out := make([]EncryptedShard, 0, len(shares))
	for _, share := range shares {
		enc, err := sealShard(share, sealKey)
		Zeroize(share)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// RebuildSigningKeyFromShards decrypts each shard under sealKey and
// combines the threshold number of them back into a [SigningPrivateKey].
// Fails with [ErrShardingFailed] if any shard fails to decrypt, or the
// combined result is not a valid non-zero secp256k1 scalar.
func RebuildSigningKeyFromShards(shards []EncryptedShard, sealKey SealKey) (SigningPrivateKey, error) {
	if len(shards) < ShardThreshold {
		return SigningPrivateKey{}, ErrShardingFailed
	}

	shares := make([][]byte, 0, len(shards))
	for _, shard := range shards {
		share, err := openShard(shard, sealKey)
		if err != nil {
			for _, s := range shares {
				Zeroize(s)
			}
			return SigningPrivateKey{}, ErrShardingFailed
		}
		shares = append(shares, share)
	}

	secret, err := combineShamir(shares)
	for _, s := range shares {
		Zeroize(s)
	}
	if err != nil {
		return SigningPrivateKey{}, ErrShardingFailed
	}
	defer Zeroize(secret)

	key, err := ImportSigningKey(secret)
	if err != nil {
		return SigningPrivateKey{}, ErrShardingFailed
	}
	return key, nil
}

func sealShard(share []byte, sealKey SealKey) (EncryptedShard, error) {
	block, err := aes.NewCipher(sealKey.material[:])
	if err != nil {
		return EncryptedShard{}, ErrEncryptionFailed
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return EncryptedShard{}, ErrEncryptionFailed
	}

	var nonce [12]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return EncryptedShard{}, ErrEncryptionFailed
	}

	ciphertext := gcm.Seal(nil, nonce[:], share, nil)
	return EncryptedShard{Ciphertext: ciphertext, Nonce: nonce}, nil
}

func openShard(shard EncryptedShard, sealKey SealKey) ([]byte, error) {
	block, err := aes.NewCipher(sealKey.material[:])
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, shard.Nonce[:], shard.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// --- Shamir secret sharing over GF(256), byte-wise. ---
//
// No Shamir-sharing library appears in any example repo's go.mod (checked
// all seven plus other_examples/); this is a from-scratch implementation of
// the same byte-wise GF(256) scheme used by well-known Go secret-sharing
// tools, built on nothing but integer arithmetic — there is no
// cryptographic primitive to reuse here, only polynomial evaluation.

// gf256Exp and gf256Log are lookup tables for GF(2^8) multiplication using
// the AES/Rijndael reduction polynomial 0x11b.
var gf256Exp [512]byte
var gf256Log [256]byte

func init() {
	x := byte(1)
	for i := 0; i < 255; i++ {
		gf256Exp[i] = x
		gf256Log[x] = byte(i)

		// Advance x to the next power of the generator 0x03: x *= 3, i.e.
		// x = double(x) ^ x, reducing double(x) by the Rijndael polynomial
		// 0x11b whenever the top bit overflows out of the byte.
		hi := x & 0x80
		doubled := x << 1
		if hi != 0 {
			doubled ^= 0x1b
		}
		x = doubled ^ x
	}
	for i := 255; i < 512; i++ {
		gf256Exp[i] = gf256Exp[i-255]
	}
}

func gf256Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gf256Exp[int(gf256Log[a])+int(gf256Log[b])]
}

func gf256Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	// b must be non-zero.
	logA := int(gf256Log[a])
	logB := int(gf256Log[b])
	diff := logA - logB
	if diff < 0 {
		diff += 255
	}
	return gf256Exp[diff]
}

// splitShamir splits secret into n shares with threshold k, each share
// prefixed with its 1-byte x-coordinate.
func splitShamir(secret []byte, n, k int) ([][]byte, error) {
	if k > n || k < 1 {
		return nil, ErrShardingFailed
	}

	shares := make([][]byte, n)
	for i := range shares {
		shares[i] = make([]byte, len(secret)+1)
		shares[i][0] = byte(i + 1) // x-coordinate, never 0
	}

	coeffs := make([]byte, k)
	for byteIdx, secretByte := range secret {
		coeffs[0] = secretByte
		if _, err := io.ReadFull(rand.Reader, coeffs[1:]); err != nil {
			return nil, ErrShardingFailed
		}

		for shareIdx := 0; shareIdx < n; shareIdx++ {
			x := byte(shareIdx + 1)
			shares[shareIdx][byteIdx+1] = evalPolynomial(coeffs, x)
		}
	}
	return shares, nil
}

func evalPolynomial(coeffs []byte, x byte) byte {
	// Horner's method, most-significant coefficient first.
	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = gf256Mul(result, x) ^ coeffs[i]
	}
	return result
}

// combineShamir reconstructs the secret from shares via Lagrange
// interpolation at x=0.
func combineShamir(shares [][]byte) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrShardingFailed
	}
	secretLen := len(shares[0]) - 1
	if secretLen <= 0 {
		return nil, ErrShardingFailed
	}
	for _, s := range shares {
		if len(s) != secretLen+1 {
			return nil, ErrShardingFailed
		}
	}

	xs := make([]byte, len(shares))
	for i, s := range shares {
		xs[i] = s[0]
		if xs[i] == 0 {
			return nil, ErrShardingFailed
		}
	}

	secret := make([]byte, secretLen)
	for byteIdx := 0; byteIdx < secretLen; byteIdx++ {
		var acc byte
		for i := range shares {
			yi := shares[i][byteIdx+1]
			num := byte(1)
			den := byte(1)
			for j := range shares {
				if i == j {
					continue
				}
				num = gf256Mul(num, xs[j])
				den = gf256Mul(den, xs[i]^xs[j])
			}
			if den == 0 {
				return nil, ErrShardingFailed
			}
			acc ^= gf256Mul(yi, gf256Div(num, den))
		}
		secret[byteIdx] = acc
	}
	return secret, nil
}
