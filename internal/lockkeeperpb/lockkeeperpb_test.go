// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package lockkeeperpb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

func TestMetadata_RoundTrip_WithOptionalFields(t *testing.T) {
	userID := domain.NewUserID()
	sessionID := domain.NewSessionID()
	want := Metadata{
		AccountName: "alice",
		Action:      store.ActionRetrieveSecret,
		UserID:      &userID,
		SessionID:   &sessionID,
		RequestID:   uuid.New(),
	}

	got, err := UnmarshalMetadata(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.AccountName, got.AccountName)
	assert.Equal(t, want.Action, got.Action)
	require.NotNil(t, got.UserID)
	assert.Equal(t, *want.UserID, *got.UserID)
	require.NotNil(t, got.SessionID)
	assert.Equal(t, *want.SessionID, *got.SessionID)
	assert.Equal(t, want.RequestID, got.RequestID)
}

func TestMetadata_RoundTrip_WithoutOptionalFields(t *testing.T) {
	want := Metadata{
		AccountName: "bob",
		Action:      store.ActionRegister,
		RequestID:   uuid.New(),
	}

	got, err := UnmarshalMetadata(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.AccountName, got.AccountName)
	assert.Equal(t, want.Action, got.Action)
	assert.Nil(t, got.UserID)
	assert.Nil(t, got.SessionID)
	assert.Equal(t, want.RequestID, got.RequestID)
}

func TestBytesMessage_RoundTrip(t *testing.T) {
	want := BytesMessage{Data: []byte("opaque handshake bytes")}
	got, err := UnmarshalBytesMessage(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.Data, got.Data)
}

func TestKeyIDMessage_RoundTrip(t *testing.T) {
	var want KeyIDMessage
	for i := range want.KeyID {
		want.KeyID[i] = byte(i)
	}
	got, err := UnmarshalKeyIDMessage(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.KeyID, got.KeyID)
}

func TestKeyIDAndPayload_RoundTrip(t *testing.T) {
	want := KeyIDAndPayload{Payload: []byte("bytes to sign")}
	for i := range want.KeyID {
		want.KeyID[i] = byte(2 * i)
	}
	got, err := UnmarshalKeyIDAndPayload(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.KeyID, got.KeyID)
	assert.Equal(t, want.Payload, got.Payload)
}

func TestUserIDMessage_RoundTrip(t *testing.T) {
	want := UserIDMessage{UserID: domain.NewUserID()}
	got, err := UnmarshalUserIDMessage(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.UserID, got.UserID)
}

func TestSessionEstablished_RoundTrip(t *testing.T) {
	want := SessionEstablished{SessionID: domain.NewSessionID()}
	got, err := UnmarshalSessionEstablished(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, got.SessionID)
}

func TestRecoverableSignatureMessage_RoundTrip(t *testing.T) {
	var want RecoverableSignatureMessage
	for i := range want.R {
		want.R[i] = byte(i)
		want.S[i] = byte(255 - i)
	}
	want.V = 1

	got, err := UnmarshalRecoverableSignatureMessage(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAuditEventFilterMessage_RoundTrip(t *testing.T) {
	before := time.Now().Truncate(time.Second).UTC()
	reqID := uuid.New()
	var keyID domain.KeyIDBytes
	keyID[0] = 0xAB

	want := AuditEventFilterMessage{
		Before:    &before,
		KeyIDs:    []domain.KeyIDBytes{keyID},
		RequestID: &reqID,
	}

	got, err := UnmarshalAuditEventFilterMessage(want.Marshal())
	require.NoError(t, err)
	require.NotNil(t, got.Before)
	assert.Equal(t, before.Unix(), got.Before.Unix())
	assert.Nil(t, got.After)
	assert.Equal(t, want.KeyIDs, got.KeyIDs)
	require.NotNil(t, got.RequestID)
	assert.Equal(t, *want.RequestID, *got.RequestID)
}

func TestAuditEventListMessage_RoundTrip(t *testing.T) {
	var keyID domain.KeyIDBytes
	keyID[1] = 0xCD

	e1 := AuditEventMessage{
		EventID:   1,
		RequestID: uuid.New(),
		AccountID: 42,
		Action:    store.ActionGenerateSecret,
		Status:    store.AuditStatusSuccessful,
		Timestamp: time.Now().Truncate(time.Second).UTC(),
	}
	e2 := AuditEventMessage{
		EventID:   2,
		RequestID: uuid.New(),
		AccountID: 42,
		KeyID:     &keyID,
		Action:    store.ActionDeleteKey,
		Status:    store.AuditStatusFailed,
		Timestamp: time.Now().Truncate(time.Second).UTC(),
	}

	want := AuditEventListMessage{Events: []AuditEventMessage{e1, e2}}
	got, err := UnmarshalAuditEventListMessage(want.Marshal())
	require.NoError(t, err)
	require.Len(t, got.Events, 2)
	assert.Equal(t, e1.EventID, got.Events[0].EventID)
	assert.Equal(t, e1.RequestID, got.Events[0].RequestID)
	assert.Nil(t, got.Events[0].KeyID)
	assert.Equal(t, e2.EventID, got.Events[1].EventID)
	require.NotNil(t, got.Events[1].KeyID)
	assert.Equal(t, *e2.KeyID, *got.Events[1].KeyID)
}

func TestToStatus_MapsKindsToDistinctCodes(t *testing.T) {
	assert.Equal(t, codes.Unauthenticated, ToStatus(apperr.New(apperr.KindInvalidSession)).Code())
	assert.Equal(t, codes.NotFound, ToStatus(apperr.New(apperr.KindNoEntry)).Code())
	assert.Equal(t, codes.AlreadyExists, ToStatus(apperr.New(apperr.KindDuplicateKeyID)).Code())
	assert.Equal(t, codes.Internal, ToStatus(apperr.New(apperr.KindDatabaseError)).Code())
	assert.Equal(t, codes.Internal, ToStatus(apperr.New(apperr.KindDecryptionFailed)).Code())
}

func TestToStatus_NilIsOK(t *testing.T) {
	assert.Equal(t, codes.OK, ToStatus(nil).Code())
}

func TestFromStatus_RoundTrip(t *testing.T) {
	original := apperr.New(apperr.KindExpiredSession)
	st := ToStatus(original)
	recovered := FromStatus(st)

	var appErr *apperr.Error
	require.ErrorAs(t, recovered, &appErr)
	assert.Equal(t, apperr.KindExpiredSession, appErr.Kind)
}
