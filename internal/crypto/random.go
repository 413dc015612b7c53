// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"io"
)

// RandomBytes reads n cryptographically secure random bytes from the OS
// CSPRNG. Per spec §9 ("Ambient RNG + sync primitives"), Lock Keeper gives
// each request its own randomness instead of threading a single shared RNG
// through a mutex: every call here reads directly from [crypto/rand.Reader],
// which is safe for concurrent use without any extra locking.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, ErrEncryptionFailed
	}
	return b, nil
}
