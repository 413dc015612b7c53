// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package channel implements the bidirectional message channel spec §4.5
// describes: a pair of bounded, unidirectional frame queues multiplexed
// over one streaming RPC, promoted from unauthenticated (raw framing, for
// Register and Authenticate) to authenticated (every frame individually
// AEAD-sealed under the session key) once the server hands the client a
// session_id.
//
// The send/receive decoupling and per-frame AEAD idiom follow
// SAGE-X-project-sage's core/session/session.go (ChaCha20-Poly1305 session
// encryption keyed off a derived secret), adapted to internal/crypto's
// Encrypted wire type and to the fixed session-key-derived AEAD key spec
// §3 defines, rather than session.go's own HKDF derivation.
package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
	"github.com/rkhiriev/lock-keeper/internal/crypto"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
)

// queueDepth is the bounded buffer size spec §4.5 requires per direction.
const queueDepth = 2

// Flavor distinguishes the two channel framings spec §4.5 names.
type Flavor int32

const (
	Unauthenticated Flavor = iota
	Authenticated
)

func (f Flavor) String() string {
	if f == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// RawStream is the minimal primitive a [Channel] multiplexes over: one
// opaque byte frame per Send/Recv call. internal/server's grpcRawStream
// wrapper implements this; tests use an in-memory fake.
type RawStream interface {
	Send(frame []byte) error
	Recv() ([]byte, error)
}

// Channel is one bidirectional pair of bounded frame queues over a
// [RawStream]. Every Channel starts unauthenticated; call [Channel.Promote]
// once the session key is known.
type Channel struct {
	raw RawStream

	flavor atomic.Int32

	keyMu sync.RWMutex
	key   keyhierarchy.SessionKey

	sendQueue chan []byte
	recvQueue chan []byte

	pumpErrOnce sync.Once
	done        chan struct{}
	doneErr     error
	doneMu      sync.Mutex
}

// New wraps raw in a Channel and starts its send/receive pumps.
func New(raw RawStream) *Channel {
	c := &Channel{
		raw:       raw,
		sendQueue: make(chan []byte, queueDepth),
		recvQueue: make(chan []byte, queueDepth),
		done:      make(chan struct{}),
	}
	go c.pumpSend()
	go c.pumpRecv()
	return c
}

// Flavor reports the channel's current framing.
func (c *Channel) Flavor() Flavor { return Flavor(c.flavor.Load()) }

// Promote upgrades the channel to authenticated framing, using the given
// session key for every frame from this point on. It is called once per
// channel: directly after a successful Authenticate handshake (spec §4.6
// step 4), or, for any later RPC that arrives carrying a still-valid
// session id, immediately after the dispatcher recovers that same session
// key from [internal/sessioncache] and decrypts it under the server's
// remote storage key — each physical RPC stream gets its own Channel, so
// promotion happens fresh on every call, not just the first.
func (c *Channel) Promote(sessionKey keyhierarchy.SessionKey) {
	c.keyMu.Lock()
	c.key = sessionKey
	c.keyMu.Unlock()
	c.flavor.Store(int32(Authenticated))
}

// Send enqueues payload for transmission, encrypting it first if the
// channel is authenticated. It blocks if the bounded send queue is full.
func (c *Channel) Send(ctx context.Context, payload []byte) error {
	frame, err := c.encodeOutgoing(payload)
	if err != nil {
		return err
	}

	select {
	case c.sendQueue <- frame:
		return nil
	case <-c.done:
		return c.closedError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until the next inbound frame arrives, decrypting it first
// if the channel is authenticated. Receiving after the peer has closed the
// stream (or after the channel itself closed) returns
// [apperr.KindNoMessageReceived], per spec §4.5's cancellation semantics.
func (c *Channel) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-c.recvQueue:
		if !ok {
			return nil, apperr.New(apperr.KindNoMessageReceived)
		}
		return c.decodeIncoming(frame)
	case <-c.done:
		return nil, apperr.New(apperr.KindNoMessageReceived)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the channel's pumps. cause, if non-nil, is the terminal
// error status that closed the stream (spec §4.5: "either side may send a
// terminal error status that closes the stream").
func (c *Channel) Close(cause error) {
	c.pumpErrOnce.Do(func() {
		c.doneMu.Lock()
		c.doneErr = cause
		c.doneMu.Unlock()
		close(c.done)
	})
}

func (c *Channel) closedError() error {
	c.doneMu.Lock()
	defer c.doneMu.Unlock()
	if c.doneErr != nil {
		return c.doneErr
	}
	return apperr.New(apperr.KindNoMessageReceived)
}

func (c *Channel) encodeOutgoing(payload []byte) ([]byte, error) {
	if c.Flavor() == Unauthenticated {
		return payload, nil
	}

	c.keyMu.RLock()
	key := c.key
	c.keyMu.RUnlock()

	enc, err := key.EncryptFrame(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEncryptionFailed, err)
	}
	return enc.MarshalBinary()
}

func (c *Channel) decodeIncoming(frame []byte) ([]byte, error) {
	if c.Flavor() == Unauthenticated {
		return frame, nil
	}

	enc, err := crypto.UnmarshalEncrypted(frame)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidMessage, err)
	}

	c.keyMu.RLock()
	key := c.key
	c.keyMu.RUnlock()

	plaintext, err := key.DecryptFrame(enc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDecryptionFailed, err)
	}
	return plaintext, nil
}

// pumpSend drains the bounded send queue into the raw stream. A raw send
// error closes the channel with that error as the cause.
func (c *Channel) pumpSend() {
	for {
		select {
		case frame := <-c.sendQueue:
			if err := c.raw.Send(frame); err != nil {
				c.Close(apperr.Wrap(apperr.KindNoMessageReceived, err))
				return
			}
		case <-c.done:
			return
		}
	}
}

// pumpRecv fills the bounded receive queue from the raw stream. A raw
// receive error (including EOF on stream close) closes the receive queue,
// so a blocked or future [Channel.Receive] call observes
// [apperr.KindNoMessageReceived] rather than blocking forever.
func (c *Channel) pumpRecv() {
	defer close(c.recvQueue)
	for {
		frame, err := c.raw.Recv()
		if err != nil {
			return
		}
		select {
		case c.recvQueue <- frame:
		case <-c.done:
			return
		}
	}
}
