// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package opaque

import (
	ristretto "github.com/gtank/ristretto255"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
)

// ServerSetup is the server's long-lived OPAQUE secret (spec §4.6,
// "a long-lived per-server secret persisted alongside account data"): one
// OPRF key shared across every account's registration, and one static AKE
// keypair used as the server's long-term Diffie-Hellman identity in every
// login. Losing this value requires every account to re-register.
type ServerSetup struct {
	oprfKey    *ristretto.Scalar
	akePrivate *ristretto.Scalar
	akePublic  *ristretto.Element
}

const serverSetupLength = 64 // oprfKey (32) + akePrivate (32); akePublic is derived

// GenerateServerSetup draws a fresh OPRF key and AKE keypair.
func GenerateServerSetup() ServerSetup {
	oprfKey := randomScalar()
	akePrivate := randomScalar()
	return ServerSetup{
		oprfKey:    oprfKey,
		akePrivate: akePrivate,
		akePublic:  new(ristretto.Element).ScalarBaseMult(akePrivate),
	}
}

// Bytes serializes the setup's secret scalars for persistence (spec's
// "persisted alongside account data"). The public key is re-derived on
// load rather than stored, since it is determined by akePrivate.
func (s ServerSetup) Bytes() []byte {
	out := make([]byte, 0, serverSetupLength)
	out = append(out, s.oprfKey.Encode(nil)...)
	out = append(out, s.akePrivate.Encode(nil)...)
	return out
}

// ServerSetupFromBytes parses a value produced by [ServerSetup.Bytes].
func ServerSetupFromBytes(b []byte) (ServerSetup, error) {
	if len(b) != serverSetupLength {
		return ServerSetup{}, apperr.New(apperr.KindConversionError)
	}

	oprfKey := new(ristretto.Scalar)
	if err := oprfKey.Decode(b[:32]); err != nil {
		return ServerSetup{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	akePrivate := new(ristretto.Scalar)
	if err := akePrivate.Decode(b[32:64]); err != nil {
		return ServerSetup{}, apperr.Wrap(apperr.KindConversionError, err)
	}

	return ServerSetup{
		oprfKey:    oprfKey,
		akePrivate: akePrivate,
		akePublic:  new(ristretto.Element).ScalarBaseMult(akePrivate),
	}, nil
}
