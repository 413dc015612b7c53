// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

// versionTag prefixes every [AssociatedData] value. It lets a future wire
// format change be detected and rejected instead of silently misinterpreted.
const versionTag = "Version 0.2."

// AssociatedData is the length-prefixed byte sequence bound to every AEAD
// ciphertext and every HKDF-derived key in Lock Keeper. It always starts
// from [versionTag] and accumulates labeled chunks via [AssociatedData.WithString]
// and [AssociatedData.WithBytes], so two keys/ciphertexts produced for
// different purposes can never be confused with each other even if the
// underlying key material collided.
type AssociatedData struct {
	data []byte
}

// NewAssociatedData returns an [AssociatedData] seeded with the version tag.
func NewAssociatedData() AssociatedData {
	return AssociatedData{data: []byte(versionTag)}
}

// WithString appends s's bytes to the associated data and returns the
// extended value. The receiver is left unmodified; chain calls as in
// NewAssociatedData().WithString("a").WithBytes(userID).
func (ad AssociatedData) WithString(s string) AssociatedData {
	return ad.WithBytes([]byte(s))
}

// WithBytes appends b to the associated data and returns the extended value.
func (ad AssociatedData) WithBytes(b []byte) AssociatedData {
	out := make([]byte, len(ad.data)+len(b))
	copy(out, ad.data)
	copy(out[len(ad.data):], b)
	return AssociatedData{data: out}
}

// Bytes returns the raw associated-data bytes, suitable for passing as the
// AEAD's AAD or as HKDF's info parameter.
func (ad AssociatedData) Bytes() []byte {
	return ad.data
}

// Equal reports whether two associated-data values are byte-identical.
func (ad AssociatedData) Equal(other AssociatedData) bool {
	if len(ad.data) != len(other.data) {
		return false
	}
	for i := range ad.data {
		if ad.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
