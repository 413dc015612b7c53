// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package operations

import (
	"context"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/opaque"
)

// Authenticate runs the three-message OPAQUE login exchange (spec §4.6
// step 1-4), then derives the session key, caches it, and promotes the
// channel before replying with the fresh session id. call.Account is
// resolved by account name before this handler runs.
func Authenticate(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	stored, err := opaque.UnmarshalStoredRegistration(call.Account.ServerRegistration)
	if err != nil {
		return Outcome{}, err
	}

	reqBytes, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}
	req, err := opaque.CredentialRequestFromBytes(reqBytes)
	if err != nil {
		return Outcome{}, err
	}

	serverLogin, resp := opaque.ServerEvaluateLogin(deps.OpaqueSetup, stored, req)
	respBytes, err := resp.Bytes()
	if err != nil {
		return Outcome{}, err
	}
	if err := sendBytes(ctx, call.Channel, respBytes); err != nil {
		return Outcome{}, err
	}

	finBytes, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}
	fin, err := opaque.CredentialFinalizationFromBytes(finBytes)
	if err != nil {
		return Outcome{}, err
	}

	sharedSecret, err := opaque.ServerFinishLogin(serverLogin, fin)
	if err != nil {
		return Outcome{}, err
	}

	sessionKey, err := keyhierarchy.SessionKeyFromOpaqueOutput(sharedSecret[:])
	if err != nil {
		return Outcome{}, WrapCrypto(err)
	}

	encryptedKey, err := deps.RemoteStorageKey.EncryptSessionKey(sessionKey)
	if err != nil {
		return Outcome{}, WrapCrypto(err)
	}

	sessionID := deps.Sessions.Create(call.Account.AccountID, encryptedKey)
	call.Channel.Promote(sessionKey)

	if err := call.Channel.Send(ctx, lockkeeperpb.SessionEstablished{SessionID: sessionID}.Marshal()); err != nil {
		return Outcome{}, err
	}

	return Outcome{AccountID: call.Account.AccountID}, nil
}

// GetUserID returns the caller's user id (spec §4.8). The dispatcher has
// already resolved call.Account via the session, so this is a pure lookup.
func GetUserID(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	if err := call.Channel.Send(ctx, lockkeeperpb.UserIDMessage{UserID: call.Account.UserID}.Marshal()); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID}, nil
}

// Logout deletes the caller's session, so any other live RPC stream
// carrying the same session id stops being able to re-promote a channel
// with it.
func Logout(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	if call.Metadata.SessionID == nil {
		return Outcome{}, apperr.New(apperr.KindMissingSession)
	}
	deps.Sessions.Delete(*call.Metadata.SessionID)
	if err := sendEmpty(ctx, call.Channel); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID}, nil
}
