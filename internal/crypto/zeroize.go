// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

// Zeroize overwrites b in place with zero bytes. Go has no destructors, so
// every holder of secret material (keys, passwords, derived key material,
// reconstructed shards) must call Zeroize explicitly — typically via defer
// right after the value is produced — instead of relying on garbage
// collection to scrub it. This is the one place in the package that falls
// back to nothing but the standard library, because no allocator-level
// zero-on-free primitive exists in the Go ecosystem the example pack draws
// from.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zeroizer is implemented by any type that owns secret bytes it can erase
// on demand. Every key type in internal/keyhierarchy implements this.
type Zeroizer interface {
	Zeroize()
}
