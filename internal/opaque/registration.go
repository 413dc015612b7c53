// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package opaque

import (
	ristretto "github.com/gtank/ristretto255"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// RegistrationRequest is the client's first registration message: the
// blinded OPRF input, account name carried alongside it on the wire
// (spec §4.6 step 1).
type RegistrationRequest struct {
	Alpha *ristretto.Element
}

func (r RegistrationRequest) Bytes() []byte { return r.Alpha.Encode(nil) }

func RegistrationRequestFromBytes(b []byte) (RegistrationRequest, error) {
	alpha := new(ristretto.Element)
	if err := alpha.Decode(b); err != nil {
		return RegistrationRequest{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	return RegistrationRequest{Alpha: alpha}, nil
}

// RegistrationResponse is the server's reply: the evaluated OPRF output and
// the server's static public key (spec §4.6 step 2).
type RegistrationResponse struct {
	Beta            *ristretto.Element
	ServerPublicKey *ristretto.Element
}

func (r RegistrationResponse) Bytes() []byte {
	out := make([]byte, 0, 64)
	out = append(out, r.Beta.Encode(nil)...)
	out = append(out, r.ServerPublicKey.Encode(nil)...)
	return out
}

func RegistrationResponseFromBytes(b []byte) (RegistrationResponse, error) {
	if len(b) != 64 {
		return RegistrationResponse{}, apperr.New(apperr.KindConversionError)
	}
	beta := new(ristretto.Element)
	if err := beta.Decode(b[:32]); err != nil {
		return RegistrationResponse{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	serverPub := new(ristretto.Element)
	if err := serverPub.Decode(b[32:64]); err != nil {
		return RegistrationResponse{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	return RegistrationResponse{Beta: beta, ServerPublicKey: serverPub}, nil
}

// RegistrationUpload is the client's final registration message: the
// sealed envelope and the client's static public key (spec §4.6 step 3).
type RegistrationUpload struct {
	Envelope crypto.Encrypted
	Pu       *ristretto.Element
}

// Bytes serializes the upload the same way [StoredRegistration.MarshalBinary]
// does: the envelope followed by the client's 32-byte public key.
func (u RegistrationUpload) Bytes() ([]byte, error) {
	envelope, err := u.Envelope.MarshalBinary()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConversionError, err)
	}
	out := make([]byte, 0, len(envelope)+32)
	out = append(out, envelope...)
	out = append(out, u.Pu.Encode(nil)...)
	return out, nil
}

// RegistrationUploadFromBytes parses the format produced by
// [RegistrationUpload.Bytes].
func RegistrationUploadFromBytes(b []byte) (RegistrationUpload, error) {
	stored, err := UnmarshalStoredRegistration(b)
	if err != nil {
		return RegistrationUpload{}, err
	}
	return RegistrationUpload{Envelope: stored.Envelope, Pu: stored.Pu}, nil
}

// ClientRegistration holds the client-side state between
// [ClientBeginRegistration] and [ClientFinishRegistration]: the password
// and OPRF blind must survive the server round trip.
type ClientRegistration struct {
	password []byte
	blind    *ristretto.Scalar
}

// ClientBeginRegistration blinds password and returns the request to send
// to the server.
func ClientBeginRegistration(password []byte) (ClientRegistration, RegistrationRequest) {
	blind := randomScalar()
	alpha := new(ristretto.Element).ScalarMult(blind, hashPassword(password))
	return ClientRegistration{password: password, blind: blind}, RegistrationRequest{Alpha: alpha}
}

// ServerEvaluateRegistration evaluates the client's blinded OPRF input
// under the server's OPRF key (spec §4.6 step 2). Callers must first check
// that the account name is free; this function has no side effect on
// server state.
func ServerEvaluateRegistration(setup ServerSetup, req RegistrationRequest) RegistrationResponse {
	beta := new(ristretto.Element).ScalarMult(setup.oprfKey, req.Alpha)
	return RegistrationResponse{Beta: beta, ServerPublicKey: setup.akePublic}
}

// ClientFinishRegistration unblinds the server's evaluation, derives the
// export key and the envelope encryption key, generates the client's
// static keypair, and seals the envelope (spec §4.6 step 3). The returned
// export key is the root of the client-only key hierarchy
// (internal/keyhierarchy.DeriveMasterKey); it never leaves the client.
func ClientFinishRegistration(reg ClientRegistration, accountName string, resp RegistrationResponse) (RegistrationUpload, []byte, error) {
	blindInv := new(ristretto.Scalar).Invert(reg.blind)
	evaluated := new(ristretto.Element).ScalarMult(blindInv, resp.Beta)
	rw := oprfOutput(reg.password, evaluated)

	cipherKey, exportKey := envelopeKeys(rw)

	pu := randomScalar()
	Pu := new(ristretto.Element).ScalarBaseMult(pu)

	envelope, err := sealEnvelope(cipherKey, accountName, envelopePlaintext{pu: pu, Pu: Pu, Ps: resp.ServerPublicKey})
	if err != nil {
		return RegistrationUpload{}, nil, err
	}

	return RegistrationUpload{Envelope: envelope, Pu: Pu}, exportKey, nil
}

// StoredRegistration is the server's persisted per-account OPAQUE record
// (spec §4.6 step 4: "stores the resulting record under a fresh user id").
// It is opaque to everything except this package.
type StoredRegistration struct {
	Envelope crypto.Encrypted
	Pu       *ristretto.Element
}

// ServerFinishRegistration packages the client's upload for storage.
func ServerFinishRegistration(upload RegistrationUpload) StoredRegistration {
	return StoredRegistration{Envelope: upload.Envelope, Pu: upload.Pu}
}

// MarshalBinary serializes the record as account.ServerRegistration: the
// length-prefixed envelope followed by the client's 32-byte public key.
func (r StoredRegistration) MarshalBinary() ([]byte, error) {
	envelope, err := r.Envelope.MarshalBinary()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConversionError, err)
	}
	out := make([]byte, 0, len(envelope)+32)
	out = append(out, envelope...)
	out = append(out, r.Pu.Encode(nil)...)
	return out, nil
}

// UnmarshalStoredRegistration parses the format produced by
// [StoredRegistration.MarshalBinary].
func UnmarshalStoredRegistration(b []byte) (StoredRegistration, error) {
	if len(b) < 32 {
		return StoredRegistration{}, apperr.New(apperr.KindConversionError)
	}
	envelopeBytes, puBytes := b[:len(b)-32], b[len(b)-32:]

	envelope, err := crypto.UnmarshalEncrypted(envelopeBytes)
	if err != nil {
		return StoredRegistration{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	Pu := new(ristretto.Element)
	if err := Pu.Decode(puBytes); err != nil {
		return StoredRegistration{}, apperr.Wrap(apperr.KindConversionError, err)
	}

	return StoredRegistration{Envelope: envelope, Pu: Pu}, nil
}
