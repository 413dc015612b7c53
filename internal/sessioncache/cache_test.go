// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package sessioncache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
)

func newTestCache(t *testing.T, expiration time.Duration) *Cache {
	t.Helper()
	c := New(expiration, time.Hour)
	t.Cleanup(c.Close)
	return c
}

func someEncryptedKey(t *testing.T) keyhierarchy.EncryptedSessionKey {
	t.Helper()
	remoteStorageKey, err := keyhierarchy.GenerateRemoteStorageKey()
	require.NoError(t, err)
	sessionKey, err := keyhierarchy.SessionKeyFromOpaqueOutput(make([]byte, 64))
	require.NoError(t, err)
	enc, err := remoteStorageKey.EncryptSessionKey(sessionKey)
	require.NoError(t, err)
	return enc
}

func TestCreateThenFindRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Hour)
	accountID := domain.AccountID(1)
	encrypted := someEncryptedKey(t)

	id := c.Create(accountID, encrypted)

	found, err := c.Find(id)
	require.NoError(t, err)
	require.Equal(t, accountID, found.AccountID)
}

func TestFindMissingSession(t *testing.T) {
	c := newTestCache(t, time.Hour)
	_, err := c.Find(domain.NewSessionID())
	require.ErrorIs(t, err, ErrMissingSession)
}

func TestFindExpiredSessionIsDeleted(t *testing.T) {
	c := newTestCache(t, time.Millisecond)
	id := c.Create(domain.AccountID(1), someEncryptedKey(t))

	time.Sleep(5 * time.Millisecond)

	_, err := c.Find(id)
	require.ErrorIs(t, err, ErrExpiredSession)

	_, err = c.Find(id)
	require.ErrorIs(t, err, ErrMissingSession)
}

func TestCreateReplacesPriorSessionForSameAccount(t *testing.T) {
	c := newTestCache(t, time.Hour)
	accountID := domain.AccountID(1)

	first := c.Create(accountID, someEncryptedKey(t))
	second := c.Create(accountID, someEncryptedKey(t))
	require.NotEqual(t, first, second)

	_, err := c.Find(first)
	require.ErrorIs(t, err, ErrMissingSession)

	_, err = c.Find(second)
	require.NoError(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	c := newTestCache(t, time.Hour)
	id := c.Create(domain.AccountID(1), someEncryptedKey(t))

	c.Delete(id)
	c.Delete(id)

	_, err := c.Find(id)
	require.ErrorIs(t, err, ErrMissingSession)
}

func TestDistinctAccountsHaveIndependentSessions(t *testing.T) {
	c := newTestCache(t, time.Hour)
	id1 := c.Create(domain.AccountID(1), someEncryptedKey(t))
	id2 := c.Create(domain.AccountID(2), someEncryptedKey(t))

	_, err := c.Find(id1)
	require.NoError(t, err)
	_, err = c.Find(id2)
	require.NoError(t, err)
}
