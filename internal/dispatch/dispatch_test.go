// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/channel"
	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/mock"
	"github.com/rkhiriev/lock-keeper/internal/operations"
	"github.com/rkhiriev/lock-keeper/internal/sessioncache"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// fakeRawStream is an in-memory [channel.RawStream] that never actually
// blocks: Recv always errors (there is nothing for these tests to read),
// Send is a no-op.
type fakeRawStream struct{}

func (fakeRawStream) Send([]byte) error     { return nil }
func (fakeRawStream) Recv() ([]byte, error) { return nil, errors.New("no frames in fake stream") }

func appErrKind(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Kind
}

func TestHandle_UnknownAction(t *testing.T) {
	d := New(operations.Deps{})
	meta := lockkeeperpb.Metadata{Action: store.ClientAction(9999), RequestID: uuid.New()}

	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidMessage, appErrKind(t, err))
}

func TestHandle_AuthenticatedActionMissingSession(t *testing.T) {
	d := New(operations.Deps{})
	meta := lockkeeperpb.Metadata{Action: store.ActionGenerateSecret, RequestID: uuid.New()}

	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthenticatedChannelNeeded, appErrKind(t, err))
}

func TestHandle_UnauthenticatedActionWithSession(t *testing.T) {
	d := New(operations.Deps{})
	sessionID := domain.NewSessionID()
	meta := lockkeeperpb.Metadata{Action: store.ActionRegister, SessionID: &sessionID, RequestID: uuid.New()}

	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())

	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticatedChannelNeeded, appErrKind(t, err))
}

func TestHandle_ResolveByAccountNameNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	dataStore := mock.NewMockDataStore(ctrl)
	dataStore.EXPECT().
		FindAccountByName(gomock.Any(), "ghost").
		Return(store.Account{}, store.ErrNoEntry)

	d := New(operations.Deps{Store: dataStore})
	meta := lockkeeperpb.Metadata{Action: store.ActionAuthenticate, AccountName: "ghost", RequestID: uuid.New()}

	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidAccount, appErrKind(t, err))
}

func TestHandle_ResolveBySessionMissing(t *testing.T) {
	sessions := sessioncache.New(time.Hour, time.Hour)
	t.Cleanup(sessions.Close)

	d := New(operations.Deps{Sessions: sessions})
	sessionID := domain.NewSessionID()
	meta := lockkeeperpb.Metadata{Action: store.ActionGenerateSecret, SessionID: &sessionID, RequestID: uuid.New()}

	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())

	require.Error(t, err)
	assert.Equal(t, apperr.KindMissingSession, appErrKind(t, err))
}

// TestHandle_RecordsStartedAndTerminalAuditPair overrides the action table
// with a fake handler so the audit bookkeeping around it (spec §4.7's
// Started/terminal pair) can be verified without driving a real OPAQUE or
// storage-key handshake.
func TestHandle_RecordsStartedAndTerminalAuditPair(t *testing.T) {
	ctrl := gomock.NewController(t)
	dataStore := mock.NewMockDataStore(ctrl)

	account := store.Account{AccountID: domain.AccountID(7)}
	dataStore.EXPECT().
		FindAccountByName(gomock.Any(), "alice").
		Return(account, nil)

	requestID := uuid.New()
	gomock.InOrder(
		dataStore.EXPECT().
			CreateAuditEvent(gomock.Any(), requestID, domain.AccountID(7), nil, store.ActionAuthenticate, store.AuditStatusStarted).
			Return(nil),
		dataStore.EXPECT().
			CreateAuditEvent(gomock.Any(), requestID, domain.AccountID(7), nil, store.ActionAuthenticate, store.AuditStatusSuccessful).
			Return(nil),
	)

	d := &Dispatcher{
		deps: operations.Deps{Store: dataStore},
		table: map[store.ClientAction]actionSpec{
			store.ActionAuthenticate: {
				flavor:  channel.Unauthenticated,
				resolve: resolveByAccountName,
				handler: func(context.Context, operations.Deps, operations.Call) (operations.Outcome, error) {
					return operations.Outcome{}, nil
				},
			},
		},
	}

	meta := lockkeeperpb.Metadata{Action: store.ActionAuthenticate, AccountName: "alice", RequestID: requestID}
	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())
	require.NoError(t, err)
}

// TestHandle_FailedHandlerRecordsFailedAudit verifies that a handler error
// is still returned to the caller, and the terminal audit event is
// recorded as Failed rather than Successful.
func TestHandle_FailedHandlerRecordsFailedAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	dataStore := mock.NewMockDataStore(ctrl)

	account := store.Account{AccountID: domain.AccountID(3)}
	dataStore.EXPECT().
		FindAccountByName(gomock.Any(), "bob").
		Return(account, nil)

	requestID := uuid.New()
	wantErr := apperr.New(apperr.KindInvalidLogin)
	gomock.InOrder(
		dataStore.EXPECT().
			CreateAuditEvent(gomock.Any(), requestID, domain.AccountID(3), nil, store.ActionAuthenticate, store.AuditStatusStarted).
			Return(nil),
		dataStore.EXPECT().
			CreateAuditEvent(gomock.Any(), requestID, domain.AccountID(3), nil, store.ActionAuthenticate, store.AuditStatusFailed).
			Return(nil),
	)

	d := &Dispatcher{
		deps: operations.Deps{Store: dataStore},
		table: map[store.ClientAction]actionSpec{
			store.ActionAuthenticate: {
				flavor:  channel.Unauthenticated,
				resolve: resolveByAccountName,
				handler: func(context.Context, operations.Deps, operations.Call) (operations.Outcome, error) {
					return operations.Outcome{}, wantErr
				},
			},
		},
	}

	meta := lockkeeperpb.Metadata{Action: store.ActionAuthenticate, AccountName: "bob", RequestID: requestID}
	err := d.Handle(context.Background(), fakeRawStream{}, meta.Marshal())

	require.Error(t, err)
	assert.Same(t, wantErr, err)
}
