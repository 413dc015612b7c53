// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package lockkeeperpb

import (
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// AuditEventFilterMessage is the RetrieveAuditEvents request: spec §4.3's
// "filter by before/after timestamp, key_id set, request_id", the way
// [store.AuditEventFilter] already models it server-side.
type AuditEventFilterMessage struct {
	Before    *time.Time
	After     *time.Time
	KeyIDs    []domain.KeyIDBytes
	RequestID *uuid.UUID
}

const (
	fieldFilterBefore    protowire.Number = 1
	fieldFilterAfter     protowire.Number = 2
	fieldFilterKeyIDs    protowire.Number = 3
	fieldFilterRequestID protowire.Number = 4
)

func (m AuditEventFilterMessage) Marshal() []byte {
	var b []byte
	if m.Before != nil {
		b = appendVarintField(b, fieldFilterBefore, uint64(m.Before.Unix()))
	}
	if m.After != nil {
		b = appendVarintField(b, fieldFilterAfter, uint64(m.After.Unix()))
	}
	for _, id := range m.KeyIDs {
		b = appendBytesField(b, fieldFilterKeyIDs, id[:])
	}
	if m.RequestID != nil {
		b = appendBytesField(b, fieldFilterRequestID, m.RequestID[:])
	}
	return b
}

func (m AuditEventFilterMessage) ToStoreFilter() store.AuditEventFilter {
	return store.AuditEventFilter{
		Before:    m.Before,
		After:     m.After,
		KeyIDs:    m.KeyIDs,
		RequestID: m.RequestID,
	}
}

func UnmarshalAuditEventFilterMessage(b []byte) (AuditEventFilterMessage, error) {
	var m AuditEventFilterMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		switch num {
		case fieldFilterBefore:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			t := time.Unix(int64(v), 0).UTC()
			m.Before = &t
			return n
		case fieldFilterAfter:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			t := time.Unix(int64(v), 0).UTC()
			m.After = &t
			return n
		case fieldFilterKeyIDs:
			v, n, err := consumeBytesExact(rest, 32)
			if err != nil {
				return -1
			}
			var id domain.KeyIDBytes
			copy(id[:], v)
			m.KeyIDs = append(m.KeyIDs, id)
			return n
		case fieldFilterRequestID:
			v, n, err := consumeBytesExact(rest, 16)
			if err != nil {
				return -1
			}
			var id uuid.UUID
			copy(id[:], v)
			m.RequestID = &id
			return n
		default:
			return 0
		}
	})
	return m, err
}

// AuditEventMessage is one row of the RetrieveAuditEvents response.
type AuditEventMessage struct {
	EventID   int64
	RequestID uuid.UUID
	AccountID int64
	KeyID     *domain.KeyIDBytes
	Action    store.ClientAction
	Status    store.AuditStatus
	Timestamp time.Time
}

const (
	fieldEventID        protowire.Number = 1
	fieldEventRequestID protowire.Number = 2
	fieldEventAccountID protowire.Number = 3
	fieldEventKeyID     protowire.Number = 4
	fieldEventAction    protowire.Number = 5
	fieldEventStatus    protowire.Number = 6
	fieldEventTimestamp protowire.Number = 7
)

func AuditEventMessageFromStore(e store.AuditEvent) AuditEventMessage {
	return AuditEventMessage{
		EventID:   e.EventID,
		RequestID: e.RequestID,
		AccountID: int64(e.AccountID),
		KeyID:     e.KeyID,
		Action:    e.Action,
		Status:    e.Status,
		Timestamp: e.Timestamp,
	}
}

func (m AuditEventMessage) Marshal() []byte {
	b := appendVarintField(nil, fieldEventID, uint64(m.EventID))
	b = appendBytesField(b, fieldEventRequestID, m.RequestID[:])
	b = appendVarintField(b, fieldEventAccountID, uint64(m.AccountID))
	if m.KeyID != nil {
		b = appendBytesField(b, fieldEventKeyID, m.KeyID[:])
	}
	b = appendVarintField(b, fieldEventAction, uint64(m.Action))
	b = appendVarintField(b, fieldEventStatus, uint64(m.Status))
	b = appendVarintField(b, fieldEventTimestamp, uint64(m.Timestamp.Unix()))
	return b
}

func unmarshalAuditEventMessage(b []byte) (AuditEventMessage, error) {
	var m AuditEventMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		switch num {
		case fieldEventID:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			m.EventID = int64(v)
			return n
		case fieldEventRequestID:
			v, n, err := consumeBytesExact(rest, 16)
			if err != nil {
				return -1
			}
			copy(m.RequestID[:], v)
			return n
		case fieldEventAccountID:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			m.AccountID = int64(v)
			return n
		case fieldEventKeyID:
			v, n, err := consumeBytesExact(rest, 32)
			if err != nil {
				return -1
			}
			var id domain.KeyIDBytes
			copy(id[:], v)
			m.KeyID = &id
			return n
		case fieldEventAction:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			m.Action = store.ClientAction(v)
			return n
		case fieldEventStatus:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			m.Status = store.AuditStatus(v)
			return n
		case fieldEventTimestamp:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return -1
			}
			m.Timestamp = time.Unix(int64(v), 0).UTC()
			return n
		default:
			return 0
		}
	})
	return m, err
}

// AuditEventListMessage is the full RetrieveAuditEvents response, newest
// first (spec §4.8).
type AuditEventListMessage struct {
	Events []AuditEventMessage
}

const fieldEventListEntry protowire.Number = 1

func (m AuditEventListMessage) Marshal() []byte {
	var b []byte
	for _, e := range m.Events {
		b = appendBytesField(b, fieldEventListEntry, e.Marshal())
	}
	return b
}

func UnmarshalAuditEventListMessage(b []byte) (AuditEventListMessage, error) {
	var m AuditEventListMessage
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) int {
		if num != fieldEventListEntry || typ != protowire.BytesType {
			return 0
		}
		v, n, err := consumeBytesExact(rest, -1)
		if err != nil {
			return -1
		}
		entry, err := unmarshalAuditEventMessage(v)
		if err != nil {
			return -1
		}
		m.Events = append(m.Events, entry)
		return n
	})
	return m, err
}
