// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dispatch

import (
	"context"
	"errors"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/channel"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/operations"
	"github.com/rkhiriev/lock-keeper/internal/sessioncache"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// Dispatcher routes one inbound RPC stream to its operation handler (spec
// §4.7). It is constructed once, at server startup, and is safe for
// concurrent use across every open stream.
type Dispatcher struct {
	deps  operations.Deps
	table map[store.ClientAction]actionSpec
}

// New builds a Dispatcher over deps.
func New(deps operations.Deps) *Dispatcher {
	return &Dispatcher{deps: deps, table: newActionTable()}
}

// Handle parses rawMetadata (the stream's `x-metadata` header), resolves
// the account the request belongs to, runs the matching handler over a
// fresh [channel.Channel] wrapping raw, and records the Started/terminal
// audit pair around it (spec §4.7). The returned error, if any, is an
// [*apperr.Error] suitable for [lockkeeperpb.ToStatus].
func (d *Dispatcher) Handle(ctx context.Context, raw channel.RawStream, rawMetadata []byte) error {
	meta, err := lockkeeperpb.UnmarshalMetadata(rawMetadata)
	if err != nil {
		return err
	}

	spec, ok := d.table[meta.Action]
	if !ok {
		return apperr.New(apperr.KindInvalidMessage)
	}

	if spec.flavor == channel.Authenticated && meta.SessionID == nil {
		return apperr.New(apperr.KindAuthenticatedChannelNeeded)
	}
	if spec.flavor == channel.Unauthenticated && meta.SessionID != nil {
		return apperr.New(apperr.KindUnauthenticatedChannelNeeded)
	}

	ch := channel.New(raw)
	defer ch.Close(nil)

	account, err := d.resolveAccount(ctx, ch, spec, meta)
	if err != nil {
		return err
	}

	startedAccountID := account.AccountID
	if err := d.deps.Store.CreateAuditEvent(ctx, meta.RequestID, startedAccountID, nil, meta.Action, store.AuditStatusStarted); err != nil {
		return operations.WrapStore(err)
	}

	call := operations.Call{Channel: ch, Metadata: meta, Account: account}
	outcome, handlerErr := spec.handler(ctx, d.deps, call)

	finalAccountID := startedAccountID
	if outcome.AccountID != 0 {
		finalAccountID = outcome.AccountID
	}
	status := store.AuditStatusSuccessful
	if handlerErr != nil {
		status = store.AuditStatusFailed
	}
	if auditErr := d.deps.Store.CreateAuditEvent(ctx, meta.RequestID, finalAccountID, outcome.KeyID, meta.Action, status); auditErr != nil && handlerErr == nil {
		return operations.WrapStore(auditErr)
	}

	return handlerErr
}

// resolveAccount looks up the account a request belongs to, per spec.resolve,
// promoting ch to authenticated framing when resolution goes through the
// session cache.
func (d *Dispatcher) resolveAccount(ctx context.Context, ch *channel.Channel, spec actionSpec, meta lockkeeperpb.Metadata) (store.Account, error) {
	switch spec.resolve {
	case resolveNone:
		return store.Account{}, nil

	case resolveByAccountName:
		account, err := d.deps.Store.FindAccountByName(ctx, meta.AccountName)
		if errors.Is(err, store.ErrNoEntry) {
			return store.Account{}, apperr.New(apperr.KindInvalidAccount)
		} else if err != nil {
			return store.Account{}, operations.WrapStore(err)
		}
		return account, nil

	case resolveByUserID:
		if meta.UserID == nil {
			return store.Account{}, apperr.New(apperr.KindInvalidMessage)
		}
		account, err := d.deps.Store.FindAccountByUserID(ctx, *meta.UserID)
		if errors.Is(err, store.ErrNoEntry) {
			return store.Account{}, apperr.New(apperr.KindInvalidAccount)
		} else if err != nil {
			return store.Account{}, operations.WrapStore(err)
		}
		return account, nil

	case resolveBySession:
		if meta.SessionID == nil {
			return store.Account{}, apperr.New(apperr.KindMissingSession)
		}
		sess, err := d.deps.Sessions.Find(*meta.SessionID)
		if err != nil {
			return store.Account{}, mapSessionError(err)
		}

		account, err := d.deps.Store.FindAccountByID(ctx, sess.AccountID)
		if err != nil {
			return store.Account{}, operations.WrapStore(err)
		}

		sessionKey, err := d.deps.RemoteStorageKey.DecryptSessionKey(sess.EncryptedKey)
		if err != nil {
			return store.Account{}, operations.WrapCrypto(err)
		}
		ch.Promote(sessionKey)

		return account, nil

	default:
		return store.Account{}, apperr.New(apperr.KindInvalidMessage)
	}
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, sessioncache.ErrMissingSession):
		return apperr.Wrap(apperr.KindMissingSession, err)
	case errors.Is(err, sessioncache.ErrExpiredSession):
		return apperr.Wrap(apperr.KindExpiredSession, err)
	default:
		return apperr.Wrap(apperr.KindInvalidSession, err)
	}
}
