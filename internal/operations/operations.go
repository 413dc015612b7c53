// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package operations implements Lock Keeper's 16 request handlers (spec
// §4.8): one function per client action, each a small message-oriented
// state machine over an internal/channel.Channel. Handlers never see the
// raw gRPC stream or the request metadata header directly — internal/dispatch
// parses those, resolves the account and audit bookkeeping, and hands each
// handler a [Call] already scoped to one account (or none, for Register).
package operations

import (
	"context"
	"errors"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/channel"
	"github.com/rkhiriev/lock-keeper/internal/crypto"
	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/logger"
	"github.com/rkhiriev/lock-keeper/internal/opaque"
	"github.com/rkhiriev/lock-keeper/internal/sessioncache"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// Deps bundles every component a handler may need. It is constructed once,
// at server startup, and shared read-only across every request.
type Deps struct {
	Store            store.DataStore
	Sessions         *sessioncache.Cache
	OpaqueSetup      opaque.ServerSetup
	RemoteStorageKey keyhierarchy.RemoteStorageKey
	Log              *logger.Logger
}

// Call is one resolved invocation of a handler: the channel to exchange
// messages over, the parsed request metadata, and the account dispatch
// resolved before running the handler. Account is the zero value for
// Register, where no account exists yet, and for a failed Authenticate or
// CreateStorageKey lookup.
type Call struct {
	Channel  *channel.Channel
	Metadata lockkeeperpb.Metadata
	Account  store.Account
}

// Outcome reports what a handler did, for internal/dispatch's audit
// bookkeeping. AccountID overrides the account the Started event was
// logged against — Register needs this, since no account exists until the
// handler itself creates one. KeyID, if set, is recorded on the terminal
// audit event.
type Outcome struct {
	AccountID domain.AccountID
	KeyID     *domain.KeyIDBytes
}

// Handler is the signature every operation implements.
type Handler func(ctx context.Context, deps Deps, call Call) (Outcome, error)

// WrapCrypto translates one of internal/crypto's plain sentinel errors
// into the matching [apperr.Kind], since that package has no notion of
// request handling and returns bare errors.New values.
func WrapCrypto(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, crypto.ErrEncryptionFailed):
		return apperr.Wrap(apperr.KindEncryptionFailed, err)
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return apperr.Wrap(apperr.KindDecryptionFailed, err)
	case errors.Is(err, crypto.ErrKeyDerivationFailed):
		return apperr.Wrap(apperr.KindKeyDerivationFailed, err)
	case errors.Is(err, crypto.ErrConversionError):
		return apperr.Wrap(apperr.KindConversionError, err)
	case errors.Is(err, crypto.ErrInvalidEncryptionKey):
		return apperr.Wrap(apperr.KindInvalidEncryptionKey, err)
	case errors.Is(err, crypto.ErrSignatureVerificationFailed):
		return apperr.Wrap(apperr.KindSignatureVerificationFailed, err)
	case errors.Is(err, crypto.ErrShardingFailed):
		return apperr.Wrap(apperr.KindShardingFailed, err)
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Wrap(apperr.KindUnknown, err)
	}
}

// WrapStore translates one of internal/store's sentinel errors, where a
// specific mapping applies; everything else collapses to
// [apperr.KindDatabaseError] so callers never learn more about a storage
// failure than that it happened.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNoEntry):
		return apperr.Wrap(apperr.KindNoEntry, err)
	case errors.Is(err, store.ErrDuplicateKeyID):
		return apperr.Wrap(apperr.KindDuplicateKeyID, err)
	case errors.Is(err, store.ErrDuplicateAccount):
		return apperr.Wrap(apperr.KindAccountAlreadyRegistered, err)
	case errors.Is(err, store.ErrIncorrectAssociatedKeyData):
		return apperr.Wrap(apperr.KindIncorrectAssociatedKeyData, err)
	default:
		return apperr.Wrap(apperr.KindDatabaseError, err)
	}
}

// recvBytes reads the next frame and unmarshals it as a [lockkeeperpb.BytesMessage].
func recvBytes(ctx context.Context, ch *channel.Channel) ([]byte, error) {
	frame, err := ch.Receive(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := lockkeeperpb.UnmarshalBytesMessage(frame)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

// sendBytes frames and sends payload as a [lockkeeperpb.BytesMessage].
func sendBytes(ctx context.Context, ch *channel.Channel, payload []byte) error {
	return ch.Send(ctx, lockkeeperpb.BytesMessage{Data: payload}.Marshal())
}

func recvKeyID(ctx context.Context, ch *channel.Channel) (domain.KeyIDBytes, error) {
	frame, err := ch.Receive(ctx)
	if err != nil {
		return domain.KeyIDBytes{}, err
	}
	msg, err := lockkeeperpb.UnmarshalKeyIDMessage(frame)
	if err != nil {
		return domain.KeyIDBytes{}, err
	}
	return msg.KeyID, nil
}

func sendKeyID(ctx context.Context, ch *channel.Channel, keyID domain.KeyIDBytes) error {
	return ch.Send(ctx, lockkeeperpb.KeyIDMessage{KeyID: keyID}.Marshal())
}

func sendEmpty(ctx context.Context, ch *channel.Channel) error {
	return ch.Send(ctx, lockkeeperpb.Empty{}.Marshal())
}
