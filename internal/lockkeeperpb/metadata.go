// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package lockkeeperpb is Lock Keeper's wire layer (spec §6): the
// `x-metadata` stream header and the per-action typed payload messages.
// The teacher ships no `.proto` file or generated stubs, so messages here
// are hand-written Go structs with Marshal/Unmarshal methods built on
// google.golang.org/protobuf/encoding/protowire's varint/length-delimited
// field framing — the same tag/wire-type primitives `protoc-gen-go` would
// emit, without requiring a descriptor-reflection machinery this module
// has no generator to produce. Unknown fields are skipped on decode, the
// usual protobuf forward-compatibility discipline.
package lockkeeperpb

import (
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// Metadata is the per-stream header spec §6 names `x-metadata`.
type Metadata struct {
	AccountName string
	Action      store.ClientAction
	UserID      *domain.UserID
	SessionID   *domain.SessionID
	RequestID   uuid.UUID
}

const (
	fieldMetaAccountName protowire.Number = 1
	fieldMetaAction      protowire.Number = 2
	fieldMetaUserID      protowire.Number = 3
	fieldMetaSessionID   protowire.Number = 4
	fieldMetaRequestID   protowire.Number = 5
)

// Marshal serializes m for transmission as the `x-metadata` header.
func (m Metadata) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMetaAccountName, protowire.BytesType)
	b = protowire.AppendString(b, m.AccountName)

	b = protowire.AppendTag(b, fieldMetaAction, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Action))

	if m.UserID != nil {
		idBytes := m.UserID.UUID()
		b = protowire.AppendTag(b, fieldMetaUserID, protowire.BytesType)
		b = protowire.AppendBytes(b, idBytes[:])
	}

	if m.SessionID != nil {
		idBytes := uuid.UUID(*m.SessionID)
		b = protowire.AppendTag(b, fieldMetaSessionID, protowire.BytesType)
		b = protowire.AppendBytes(b, idBytes[:])
	}

	b = protowire.AppendTag(b, fieldMetaRequestID, protowire.BytesType)
	b = protowire.AppendBytes(b, m.RequestID[:])

	return b
}

// UnmarshalMetadata parses the format produced by [Metadata.Marshal].
func UnmarshalMetadata(b []byte) (Metadata, error) {
	var m Metadata

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Metadata{}, apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldMetaAccountName:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Metadata{}, apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(n))
			}
			m.AccountName = v
			b = b[n:]
		case fieldMetaAction:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Metadata{}, apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(n))
			}
			m.Action = store.ClientAction(v)
			b = b[n:]
		case fieldMetaUserID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return Metadata{}, apperr.New(apperr.KindInvalidMessage)
			}
			var id uuid.UUID
			copy(id[:], v)
			userID := domain.UserID(id)
			m.UserID = &userID
			b = b[n:]
		case fieldMetaSessionID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return Metadata{}, apperr.New(apperr.KindInvalidMessage)
			}
			var id uuid.UUID
			copy(id[:], v)
			sessionID := domain.SessionID(id)
			m.SessionID = &sessionID
			b = b[n:]
		case fieldMetaRequestID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return Metadata{}, apperr.New(apperr.KindInvalidMessage)
			}
			copy(m.RequestID[:], v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Metadata{}, apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	return m, nil
}
