// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package operations

import (
	"context"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// storeSigningKey shards pair under the server's remote storage key and
// persists it under secretType, the storage shape both ImportSigningKey and
// RemoteGenerateSigningKey share.
func storeSigningKey(ctx context.Context, deps Deps, call Call, pair keyhierarchy.SigningKeyPair, secretType store.SecretType) error {
	shards, err := pair.ShardForRemoteStorage(deps.RemoteStorageKey)
	if err != nil {
		return WrapCrypto(err)
	}

	secret := store.StoredSecret{
		KeyID:            pair.KeyID.ToDomain(),
		UserID:           call.Account.UserID,
		Type:             secretType,
		EncryptedPayload: keyhierarchy.MarshalShards(shards),
	}
	if err := deps.Store.AddSecret(ctx, secret); err != nil {
		return WrapStore(err)
	}
	return nil
}

// ImportSigningKey imports a client-supplied 32-byte private scalar (spec
// §4.8: "bytes become the private scalar deterministically"), shards it for
// at-rest storage the same way a remote-generated key is stored, and
// returns the freshly assigned key id.
func ImportSigningKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	raw, err := recvBytes(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	pair, err := keyhierarchy.ImportSigningKey(raw, call.Account.UserID.UUID())
	if err != nil {
		return Outcome{}, WrapCrypto(err)
	}
	defer pair.Zeroize()

	if err := storeSigningKey(ctx, deps, call, pair, store.SecretTypeImportedSigningKey); err != nil {
		return Outcome{}, err
	}

	domainKeyID := pair.KeyID.ToDomain()
	if err := sendKeyID(ctx, call.Channel, domainKeyID); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &domainKeyID}, nil
}

// RemoteGenerateSigningKey draws a fresh secp256k1 key entirely server-side
// (spec §4.8); the client never learns the private scalar except through a
// later ExportSigningKey call.
func RemoteGenerateSigningKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	pair, err := keyhierarchy.RemoteGenerateSigningKey(call.Account.UserID.UUID())
	if err != nil {
		return Outcome{}, WrapCrypto(err)
	}
	defer pair.Zeroize()

	if err := storeSigningKey(ctx, deps, call, pair, store.SecretTypeServerGeneratedSigningKey); err != nil {
		return Outcome{}, err
	}

	domainKeyID := pair.KeyID.ToDomain()
	if err := sendKeyID(ctx, call.Channel, domainKeyID); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &domainKeyID}, nil
}

// fetchSigningKey looks up keyID, rejecting arbitrary secrets (spec §4.8:
// "only valid for signing keys"), and reconstructs the private key from its
// shards.
func fetchSigningKey(ctx context.Context, deps Deps, call Call, keyID domain.KeyIDBytes) (keyhierarchy.SigningKeyPair, store.StoredSecret, error) {
	secret, err := deps.Store.GetSecret(ctx, call.Account.UserID, keyID, nil)
	if err != nil {
		return keyhierarchy.SigningKeyPair{}, store.StoredSecret{}, WrapStore(err)
	}
	if secret.Type == store.SecretTypeArbitrary {
		return keyhierarchy.SigningKeyPair{}, store.StoredSecret{}, apperr.New(apperr.KindIncorrectAssociatedKeyData)
	}

	shards, err := keyhierarchy.UnmarshalShards(secret.EncryptedPayload)
	if err != nil {
		return keyhierarchy.SigningKeyPair{}, store.StoredSecret{}, WrapCrypto(err)
	}

	pair, err := keyhierarchy.RebuildSigningKeyFromShards(shards, deps.RemoteStorageKey, keyhierarchy.KeyIDFromDomain(keyID))
	if err != nil {
		return keyhierarchy.SigningKeyPair{}, store.StoredSecret{}, WrapCrypto(err)
	}
	return pair, secret, nil
}

// ExportSigningKey reconstructs the signing key and returns its raw private
// scalar (spec §4.8: "raw key material").
func ExportSigningKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	keyID, err := recvKeyID(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	pair, _, err := fetchSigningKey(ctx, deps, call, keyID)
	if err != nil {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, err
	}
	defer pair.Zeroize()

	if err := sendBytes(ctx, call.Channel, pair.Private.Bytes()); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, nil
}

// RetrieveSigningKey returns the signing key's stored encrypted form as-is
// (spec §4.8: "encrypted signing key, for server-side re-signing") — the
// same shard blob [RemoteSignBytes] reconstructs from, without ever
// exposing the plaintext scalar.
func RetrieveSigningKey(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	keyID, err := recvKeyID(ctx, call.Channel)
	if err != nil {
		return Outcome{}, err
	}

	secret, err := deps.Store.GetSecret(ctx, call.Account.UserID, keyID, nil)
	if err != nil {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, WrapStore(err)
	}
	if secret.Type == store.SecretTypeArbitrary {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, apperr.New(apperr.KindIncorrectAssociatedKeyData)
	}

	if err := sendBytes(ctx, call.Channel, secret.EncryptedPayload); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &keyID}, nil
}

// RemoteSignBytes reconstructs the signing key from its shards and signs
// the caller's bytes, never returning the private scalar itself (spec
// §4.8).
func RemoteSignBytes(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	msg, err := call.Channel.Receive(ctx)
	if err != nil {
		return Outcome{}, err
	}
	req, err := lockkeeperpb.UnmarshalKeyIDAndPayload(msg)
	if err != nil {
		return Outcome{}, err
	}

	pair, _, err := fetchSigningKey(ctx, deps, call, req.KeyID)
	if err != nil {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &req.KeyID}, err
	}
	defer pair.Zeroize()

	sig, err := pair.Private.SignBytes(req.Payload)
	if err != nil {
		return Outcome{AccountID: call.Account.AccountID, KeyID: &req.KeyID}, WrapCrypto(err)
	}

	resp := lockkeeperpb.RecoverableSignatureMessage{R: sig.R, S: sig.S, V: sig.V}
	if err := call.Channel.Send(ctx, resp.Marshal()); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID, KeyID: &req.KeyID}, nil
}
