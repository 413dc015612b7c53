// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package operations

import (
	"context"

	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

var arbitrarySecretType = store.SecretTypeArbitrary

// GenerateSecret stores a client-encrypted arbitrary secret (spec §4.8: the
// 32 random bytes the secret itself consists of are generated and encrypted
// client-side; the server only sees the ciphertext). The key id is
// generated here, server-side, and handed back to the client.
func GenerateSecret(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	payload, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	keyID, err := keyhierarchy.GenerateKeyID(call.Account.UserID.UUID())
	if err != nil {
		return Outcome{}, WrapCrypto(err)
	}
	domainKeyID := keyID.ToDomain()

	secret := store.StoredSecret{
		KeyID:            domainKeyID,
		UserID:           call.Account.UserID,
		Type:             store.SecretTypeArbitrary,
		EncryptedPayload: payload,
	}
	if err := deps.Store.AddSecret(ctx, secret); err != nil {
		return Outcome{}, WrapStore(err)
	}

	if err := sendKeyID(ctx, call.Channel, domainKeyID); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &domainKeyID}, nil
}

// RetrieveSecret returns a previously generated arbitrary secret's
// encrypted payload, marking it retrieved on first read (spec §4.8, via
// [store.DataStore.GetSecret]).
func RetrieveSecret(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	keyID, err := recvKeyID(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	secret, err := deps.Store.GetSecret(ctx, call.Account.UserID, keyID, &arbitrarySecretType)
	if err != nil {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, WrapStore(err)
	}

	if err := sendBytes(ctx, call.Channel, secret.EncryptedPayload); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, nil
}

// ExportSecret is identical to RetrieveSecret at the storage layer; it is
// kept as its own handler because it audits under a distinct action (spec
// §4.8 lists Export and Retrieve separately for every secret kind).
func ExportSecret(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	return RetrieveSecret(ctx, deps, call)
}

// DeleteKey removes a stored secret or signing key, scoped to the caller's
// own user id so one account can never delete another's key (spec §4.8's
// "does not leak existence of another account's key").
func DeleteKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	keyID, err := recvKeyID(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	if err := deps.Store.DeleteSecret(ctx, call.Account.UserID, keyID); err != nil {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, WrapStore(err)
	}

	if err := sendEmpty(ctx, call.Channel); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, nil
}
