// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package lockkeeperpb

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rkhiriev/lock-keeper/internal/domain"
)

// Empty is the payload for actions that carry no data beyond the metadata
// header: RetrieveStorageKey, RemoteGenerateSigningKey, GetUserId, Logout
// requests, and every plain acknowledgement response.
type Empty struct{}

func (Empty) Marshal() []byte                { return nil }
func UnmarshalEmpty(b []byte) (Empty, error) { return Empty{}, nil }

// BytesMessage wraps one opaque byte blob: an OPAQUE handshake message
// (spec §4.6), an encrypted storage key or secret (internal/crypto.Encrypted,
// already self-describing via its own MarshalBinary), or raw key material
// for ImportSigningKey/ExportSigningKey/RetrieveSigningKey — the channel's
// own AEAD framing (internal/channel) already protects these in transit,
// so no further structure is needed here.
type BytesMessage struct {
	Data []byte
}

const fieldBytesData protowire.Number = 1

func (m BytesMessage) Marshal() []byte {
	return appendBytesField(nil, fieldBytesData, m.Data)
}

func UnmarshalBytesMessage(b []byte) (BytesMessage, error) {
	var m BytesMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		if num != fieldBytesData || typ != protowire.BytesType {
			return 0
		}
		v, n, err := consumeBytesExact(rest, -1)
		if err != nil {
			return -1
		}
		m.Data = v
		return n
	})
	return m, err
}

// KeyIDMessage carries a 32-byte key id: the request for RetrieveSecret,
// ExportSecret, DeleteKey, ExportSigningKey, RetrieveSigningKey, and the
// response for GenerateSecret/ImportSigningKey/RemoteGenerateSigningKey.
type KeyIDMessage struct {
	KeyID domain.KeyIDBytes
}

const fieldKeyID protowire.Number = 1

func (m KeyIDMessage) Marshal() []byte {
	return appendBytesField(nil, fieldKeyID, m.KeyID[:])
}

func UnmarshalKeyIDMessage(b []byte) (KeyIDMessage, error) {
	var m KeyIDMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		if num != fieldKeyID || typ != protowire.BytesType {
			return 0
		}
		v, n, err := consumeBytesExact(rest, 32)
		if err != nil {
			return -1
		}
		copy(m.KeyID[:], v)
		return n
	})
	return m, err
}

// KeyIDAndPayload carries a key id alongside a byte payload: the
// RemoteSignBytes request (key id + bytes to sign).
type KeyIDAndPayload struct {
	KeyID   domain.KeyIDBytes
	Payload []byte
}

const (
	fieldKeyIDAndPayloadKeyID protowire.Number = 1
	fieldKeyIDAndPayloadData  protowire.Number = 2
)

func (m KeyIDAndPayload) Marshal() []byte {
	b := appendBytesField(nil, fieldKeyIDAndPayloadKeyID, m.KeyID[:])
	return appendBytesField(b, fieldKeyIDAndPayloadData, m.Payload)
}

func UnmarshalKeyIDAndPayload(b []byte) (KeyIDAndPayload, error) {
	var m KeyIDAndPayload
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		switch num {
		case fieldKeyIDAndPayloadKeyID:
			v, n, err := consumeBytesExact(rest, 32)
			if err != nil {
				return -1
			}
			copy(m.KeyID[:], v)
			return n
		case fieldKeyIDAndPayloadData:
			v, n, err := consumeBytesExact(rest, -1)
			if err != nil {
				return -1
			}
			m.Payload = v
			return n
		default:
			return 0
		}
	})
	return m, err
}

// UserIDMessage carries the 16-byte user id, the GetUserId response.
type UserIDMessage struct {
	UserID domain.UserID
}

const fieldUserIDValue protowire.Number = 1

func (m UserIDMessage) Marshal() []byte {
	id := m.UserID.UUID()
	return appendBytesField(nil, fieldUserIDValue, id[:])
}

func UnmarshalUserIDMessage(b []byte) (UserIDMessage, error) {
	var m UserIDMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		if num != fieldUserIDValue || typ != protowire.BytesType {
			return 0
		}
		v, n, err := consumeBytesExact(rest, 16)
		if err != nil {
			return -1
		}
		var raw [16]byte
		copy(raw[:], v)
		m.UserID = domain.UserID(raw)
		return n
	})
	return m, err
}

// SessionEstablished is the server's final Authenticate response: the
// fresh session id that promotes the channel (spec §4.6 step 4). Register
// produces no session key and never sends this message.
type SessionEstablished struct {
	SessionID domain.SessionID
}

const fieldSessionEstablishedID protowire.Number = 1

func (m SessionEstablished) Marshal() []byte {
	id := [16]byte(m.SessionID)
	return appendBytesField(nil, fieldSessionEstablishedID, id[:])
}

func UnmarshalSessionEstablished(b []byte) (SessionEstablished, error) {
	var m SessionEstablished
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		if num != fieldSessionEstablishedID || typ != protowire.BytesType {
			return 0
		}
		v, n, err := consumeBytesExact(rest, 16)
		if err != nil {
			return -1
		}
		var raw [16]byte
		copy(raw[:], v)
		m.SessionID = domain.SessionID(raw)
		return n
	})
	return m, err
}

// RecoverableSignatureMessage is the RemoteSignBytes response: a
// recoverable ECDSA signature over the SHA3-256 digest of the signed bytes
// (spec §4.8).
type RecoverableSignatureMessage struct {
	R [32]byte
	S [32]byte
	V byte
}

const (
	fieldSigR protowire.Number = 1
	fieldSigS protowire.Number = 2
	fieldSigV protowire.Number = 3
)

func (m RecoverableSignatureMessage) Marshal() []byte {
	b := appendBytesField(nil, fieldSigR, m.R[:])
	b = appendBytesField(b, fieldSigS, m.S[:])
	return appendVarintField(b, fieldSigV, uint64(m.V))
}

func UnmarshalRecoverableSignatureMessage(b []byte) (RecoverableSignatureMessage, error) {
	var m RecoverableSignatureMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		switch num {
		case fieldSigR:
			v, n, err := consumeBytesExact(rest, 32)
			if err != nil {
				return -1
			}
			copy(m.R[:], v)
			return n
		case fieldSigS:
			v, n, err := consumeBytesExact(rest, 32)
			if err != nil {
				return -1
			}
			copy(m.S[:], v)
			return n
		case fieldSigV:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			m.V = byte(v)
			return n
		default:
			return 0
		}
	})
	return m, err
}
