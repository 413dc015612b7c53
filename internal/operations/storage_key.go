// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package operations

import "context"

// CreateStorageKey stores the client's encrypted storage key (spec §4.6
// step 5, §4.2). It runs on an unauthenticated channel right after
// Register: call.Account is resolved from the user id Register returned,
// not from a session, since no session exists yet.
func CreateStorageKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	payload, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	if err := deps.Store.SetStorageKey(ctx, call.Account.AccountID, payload); err != nil {
		return Outcome{}, WrapStore(err)
	}

	if err := sendEmpty(ctx, call.Channel); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID}, nil
}

// RetrieveStorageKey returns the caller's encrypted storage key as the
// opaque blob the client itself encrypted; the server never decrypts it.
func RetrieveStorageKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	if err := sendBytes(ctx, call.Channel, call.Account.EncryptedStorageKey); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID}, nil
}
