// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package sessioncache implements Lock Keeper's server-side session store
// (spec §4.4): an in-memory map from session id to encrypted session key,
// with expiration-on-access and at-most-one-active-session-per-account
// semantics. It is grounded on the same map+RWMutex+background-ticker
// shape as a typical in-process session manager, generalized to the
// single-active-session invariant this spec requires.
package sessioncache

import (
	"sync"
	"time"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
)

// Session is one row of the cache.
type Session struct {
	ID           domain.SessionID
	AccountID    domain.AccountID
	EncryptedKey keyhierarchy.EncryptedSessionKey
	CreatedAt    time.Time
}

// Cache is a server-side, in-memory session store. The zero value is not
// usable; construct with [New].
type Cache struct {
	expiration time.Duration

	mu        sync.RWMutex
	byID      map[domain.SessionID]Session
	byAccount map[domain.AccountID]domain.SessionID

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New constructs a Cache whose sessions expire after expiration and starts
// a background goroutine that sweeps expired rows every interval sweep.
// sweep must be positive; New panics otherwise, the same precondition
// [time.NewTicker] itself enforces.
func New(expiration, sweep time.Duration) *Cache {
	if sweep <= 0 {
		panic("sessioncache: sweep interval must be positive")
	}

	c := &Cache{
		expiration:  expiration,
		byID:        make(map[domain.SessionID]Session),
		byAccount:   make(map[domain.AccountID]domain.SessionID),
		stopCleanup: make(chan struct{}),
	}
	go c.runCleanup(sweep)
	return c
}

// Create generates a fresh session id, deletes any prior session for
// accountID (the "at most one active session per account" invariant), and
// inserts a new row with the current timestamp.
func (c *Cache) Create(accountID domain.AccountID, encryptedKey keyhierarchy.EncryptedSessionKey) domain.SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, ok := c.byAccount[accountID]; ok {
		delete(c.byID, prior)
	}

	id := domain.NewSessionID()
	c.byID[id] = Session{
		ID:           id,
		AccountID:    accountID,
		EncryptedKey: encryptedKey,
		CreatedAt:    time.Now(),
	}
	c.byAccount[accountID] = id
	return id
}

// Find looks up sessionID. If the row exists and is not yet expired, it is
// returned. Otherwise the row (if any) is deleted and [ErrMissingSession]
// or [ErrExpiredSession] is returned.
func (c *Cache) Find(sessionID domain.SessionID) (Session, error) {
	c.mu.RLock()
	sess, ok := c.byID[sessionID]
	c.mu.RUnlock()

	if !ok {
		return Session{}, ErrMissingSession
	}

	if time.Since(sess.CreatedAt) >= c.expiration {
		c.Delete(sessionID)
		return Session{}, ErrExpiredSession
	}

	return sess, nil
}

// Delete removes sessionID's row, if present. Absence is not an error.
func (c *Cache) Delete(sessionID domain.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.byID[sessionID]
	if !ok {
		return
	}
	delete(c.byID, sessionID)
	if c.byAccount[sess.AccountID] == sessionID {
		delete(c.byAccount, sess.AccountID)
	}
}

// Close stops the background sweep goroutine. Safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func (c *Cache) runCleanup(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) sweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, sess := range c.byID {
		if time.Since(sess.CreatedAt) >= c.expiration {
			delete(c.byID, id)
			if c.byAccount[sess.AccountID] == id {
				delete(c.byAccount, sess.AccountID)
			}
		}
	}
}
