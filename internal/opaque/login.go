// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package opaque

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"

	ristretto "github.com/gtank/ristretto255"
	"golang.org/x/crypto/sha3"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/crypto"
)

// CredentialRequest is the client's login message: the blinded OPRF input
// and an ephemeral Diffie-Hellman share (spec §4.6 step 1).
type CredentialRequest struct {
	Alpha *ristretto.Element
	Xu    *ristretto.Element
}

func (r CredentialRequest) Bytes() []byte {
	out := make([]byte, 0, 64)
	out = append(out, r.Alpha.Encode(nil)...)
	out = append(out, r.Xu.Encode(nil)...)
	return out
}

func CredentialRequestFromBytes(b []byte) (CredentialRequest, error) {
	if len(b) != 64 {
		return CredentialRequest{}, apperr.New(apperr.KindConversionError)
	}
	alpha := new(ristretto.Element)
	if err := alpha.Decode(b[:32]); err != nil {
		return CredentialRequest{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	xu := new(ristretto.Element)
	if err := xu.Decode(b[32:64]); err != nil {
		return CredentialRequest{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	return CredentialRequest{Alpha: alpha, Xu: xu}, nil
}

// CredentialResponse is the server's login reply: the evaluated OPRF
// output, the server's ephemeral share, the stored envelope, and a MAC
// confirming the server computed the same shared secret (spec §4.6 step 2).
type CredentialResponse struct {
	Beta     *ristretto.Element
	Xs       *ristretto.Element
	Envelope crypto.Encrypted
	Fk1      []byte
}

// Bytes serializes the response as Beta(32) ∥ Xs(32) ∥ Fk1(32) ∥
// len(envelope)(4) ∥ envelope, the fixed-size fields first so the
// variable-length envelope can sit last without its own terminator.
func (r CredentialResponse) Bytes() ([]byte, error) {
	envelope, err := r.Envelope.MarshalBinary()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConversionError, err)
	}
	out := make([]byte, 0, 96+4+len(envelope))
	out = append(out, r.Beta.Encode(nil)...)
	out = append(out, r.Xs.Encode(nil)...)
	out = append(out, r.Fk1...)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(envelope)))
	out = append(out, lenBuf[:]...)
	out = append(out, envelope...)
	return out, nil
}

// CredentialResponseFromBytes parses the format produced by
// [CredentialResponse.Bytes].
func CredentialResponseFromBytes(b []byte) (CredentialResponse, error) {
	if len(b) < 100 {
		return CredentialResponse{}, apperr.New(apperr.KindConversionError)
	}
	beta := new(ristretto.Element)
	if err := beta.Decode(b[:32]); err != nil {
		return CredentialResponse{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	xs := new(ristretto.Element)
	if err := xs.Decode(b[32:64]); err != nil {
		return CredentialResponse{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	fk1 := append([]byte(nil), b[64:96]...)
	n := binary.BigEndian.Uint32(b[96:100])
	if uint32(len(b)-100) != n {
		return CredentialResponse{}, apperr.New(apperr.KindConversionError)
	}
	envelope, err := crypto.UnmarshalEncrypted(b[100:])
	if err != nil {
		return CredentialResponse{}, apperr.Wrap(apperr.KindConversionError, err)
	}
	return CredentialResponse{Beta: beta, Xs: xs, Envelope: envelope, Fk1: fk1}, nil
}

// CredentialFinalization is the client's final login message: a MAC
// confirming the client computed the same shared secret the server did
// (spec §4.6 step 3, "client finishes login").
type CredentialFinalization struct {
	Fk2 []byte
}

func (f CredentialFinalization) Bytes() []byte {
	return append([]byte(nil), f.Fk2...)
}

func CredentialFinalizationFromBytes(b []byte) (CredentialFinalization, error) {
	if len(b) != 32 {
		return CredentialFinalization{}, apperr.New(apperr.KindConversionError)
	}
	return CredentialFinalization{Fk2: append([]byte(nil), b...)}, nil
}

// ClientLogin holds client-side state between [ClientBeginLogin] and
// [ClientFinishLogin].
type ClientLogin struct {
	password []byte
	blind    *ristretto.Scalar
	xu       *ristretto.Scalar
	Xu       *ristretto.Element
}

// ClientBeginLogin blinds password and generates an ephemeral DH share.
func ClientBeginLogin(password []byte) (ClientLogin, CredentialRequest) {
	blind := randomScalar()
	alpha := new(ristretto.Element).ScalarMult(blind, hashPassword(password))

	xu := randomScalar()
	Xu := new(ristretto.Element).ScalarBaseMult(xu)

	return ClientLogin{password: password, blind: blind, xu: xu, Xu: Xu}, CredentialRequest{Alpha: alpha, Xu: Xu}
}

// ServerLogin holds server-side state between [ServerEvaluateLogin] and
// [ServerFinishLogin]: the shared secret computed in step 2, which step 4
// needs to verify the client's confirmation MAC and to derive the session
// key on success.
type ServerLogin struct {
	sharedSecret [32]byte
}

// ServerEvaluateLogin evaluates the OPRF, runs its half of the
// Diffie-Hellman exchange against the account's stored public key, and
// returns the response plus a MAC confirming its own computation (spec
// §4.6 step 2). stored must come from [UnmarshalStoredRegistration] for an
// account that exists; callers that find no stored registration must fail
// with [apperr.KindInvalidAccount] before calling this.
func ServerEvaluateLogin(setup ServerSetup, stored StoredRegistration, req CredentialRequest) (ServerLogin, CredentialResponse) {
	beta := new(ristretto.Element).ScalarMult(setup.oprfKey, req.Alpha)

	xs := randomScalar()
	Xs := new(ristretto.Element).ScalarBaseMult(xs)

	secret := diffieHellman(setup.akePrivate, xs, stored.Pu, req.Xu)
	fk1 := prf(secret, 1)

	return ServerLogin{sharedSecret: secret}, CredentialResponse{
		Beta:     beta,
		Xs:       Xs,
		Envelope: stored.Envelope,
		Fk1:      fk1,
	}
}

// ClientFinishLogin unblinds the server's evaluation, decrypts the
// envelope (failing with [apperr.KindInvalidLogin] on a wrong password),
// completes the Diffie-Hellman exchange, and verifies the server's
// confirmation MAC (spec §4.6 step 3). On success it returns the 64-byte
// session key, the export key, and the client's own confirmation MAC to
// send back to the server.
func ClientFinishLogin(login ClientLogin, accountName string, resp CredentialResponse) (sessionKey [64]byte, exportKey []byte, fin CredentialFinalization, err error) {
	blindInv := new(ristretto.Scalar).Invert(login.blind)
	evaluated := new(ristretto.Element).ScalarMult(blindInv, resp.Beta)
	rw := oprfOutput(login.password, evaluated)

	cipherKey, exportKey := envelopeKeys(rw)

	plaintext, err := openEnvelope(cipherKey, accountName, resp.Envelope)
	if err != nil {
		return [64]byte{}, nil, CredentialFinalization{}, err
	}

	secret := diffieHellman(plaintext.pu, login.xu, plaintext.Ps, resp.Xs)
	fk1 := prf(secret, 1)
	if subtle.ConstantTimeCompare(fk1, resp.Fk1) != 1 {
		return [64]byte{}, nil, CredentialFinalization{}, apperr.New(apperr.KindInvalidLogin)
	}

	fk2 := prf(secret, 2)
	return sessionKeyFromSecret(prf(secret, 0)), exportKey, CredentialFinalization{Fk2: fk2}, nil
}

// ServerFinishLogin verifies the client's confirmation MAC against the
// shared secret computed in [ServerEvaluateLogin] and, on success, derives
// the 64-byte session key (spec §4.6 step 4).
func ServerFinishLogin(login ServerLogin, fin CredentialFinalization) ([64]byte, error) {
	expected := prf(login.sharedSecret, 2)
	if subtle.ConstantTimeCompare(expected, fin.Fk2) != 1 {
		return [64]byte{}, apperr.New(apperr.KindInvalidLogin)
	}
	return sessionKeyFromSecret(prf(login.sharedSecret, 0)), nil
}

// diffieHellman combines a static and an ephemeral keypair on each side
// into one shared secret, the same triple-ECDH occlude's keServer/keUser
// compute (three of the four possible cross products; the fourth,
// static-static, is intentionally omitted as in the source construction).
// Each side computes the two mixed ephemeral-static products in the
// opposite order, so they are hashed in byte order of their encodings.
func diffieHellman(staticPriv *ristretto.Scalar, ephemeralPriv *ristretto.Scalar, staticPub *ristretto.Element, ephemeralPub *ristretto.Element) [32]byte {
	a := new(ristretto.Element).ScalarMult(ephemeralPriv, staticPub).Encode(nil)
	b := new(ristretto.Element).ScalarMult(staticPriv, ephemeralPub).Encode(nil)
	c := new(ristretto.Element).ScalarMult(ephemeralPriv, ephemeralPub)

	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	combined := append(append([]byte{}, a...), b...)
	combined = append(combined, c.Encode(nil)...)
	return sha3.Sum256(combined)
}
