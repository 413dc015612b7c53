// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package operations

import (
	"context"
	"errors"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/opaque"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// Register runs the three-message OPAQUE registration exchange (spec §4.6
// step 1-4) on an unauthenticated channel and assigns the account a fresh
// user id. It never promotes the channel and never produces a session key.
func Register(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	accountName := call.Metadata.AccountName

	if _, err := deps.Store.FindAccountByName(ctx, accountName); err == nil {
		return Outcome{}, apperr.New(apperr.KindAccountAlreadyRegistered)
	} else if !errors.Is(err, store.ErrNoEntry) {
		return Outcome{}, WrapStore(err)
	}

	reqBytes, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}
	req, err := opaque.RegistrationRequestFromBytes(reqBytes)
	if err != nil {
		return Outcome{}, err
	}

	resp := opaque.ServerEvaluateRegistration(deps.OpaqueSetup, req)
	if err := sendBytes(ctx, call.Channel, resp.Bytes()); err != nil {
		return Outcome{}, err
	}

	uploadBytes, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}
	upload, err := opaque.RegistrationUploadFromBytes(uploadBytes)
	if err != nil {
		return Outcome{}, err
	}

	stored := opaque.ServerFinishRegistration(upload)
	storedBytes, err := stored.MarshalBinary()
	if err != nil {
		return Outcome{}, err
	}

	userID := domain.NewUserID()
	account, err := deps.Store.CreateAccount(ctx, userID, accountName, storedBytes)
	if err != nil {
		return Outcome{}, WrapStore(err)
	}

	if err := call.Channel.Send(ctx, lockkeeperpb.UserIDMessage{UserID: account.UserID}.Marshal()); err != nil {
		return Outcome{}, err
	}

	return Outcome{AccountID: account.AccountID}, nil
}
