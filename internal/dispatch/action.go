// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package dispatch implements Lock Keeper's request routing (spec §4.7,
// component C7): parsing the `x-metadata` stream header, checking the
// declared action against the channel's flavor, resolving the account that
// owns the request, writing the Started/terminal audit pair around the
// handler, and invoking the matching internal/operations.Handler.
package dispatch

import (
	"github.com/rkhiriev/lock-keeper/internal/channel"
	"github.com/rkhiriev/lock-keeper/internal/operations"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

// resolveKind selects how a dispatcher resolves the account a request
// belongs to, before the handler runs.
type resolveKind int

const (
	// resolveNone runs the handler with no account at all: Register, which
	// creates the account itself partway through.
	resolveNone resolveKind = iota
	// resolveByAccountName looks the account up by the metadata's account
	// name: Authenticate, which has no session or user id yet.
	resolveByAccountName
	// resolveByUserID looks the account up by the metadata's user id:
	// CreateStorageKey, which runs right after Register on an
	// unauthenticated channel.
	resolveByUserID
	// resolveBySession looks the account up via the session cache: every
	// other action.
	resolveBySession
)

// actionSpec is one row of the dispatch table: what channel flavor an
// action requires and how to resolve its account.
type actionSpec struct {
	flavor  channel.Flavor
	resolve resolveKind
	handler operations.Handler
}

// newActionTable builds the action → spec mapping (spec §6's 16 actions).
func newActionTable() map[store.ClientAction]actionSpec {
	return map[store.ClientAction]actionSpec{
		store.ActionRegister: {
			flavor: channel.Unauthenticated, resolve: resolveNone, handler: operations.Register,
		},
		store.ActionAuthenticate: {
			flavor: channel.Unauthenticated, resolve: resolveByAccountName, handler: operations.Authenticate,
		},
		store.ActionCreateStorageKey: {
			flavor: channel.Unauthenticated, resolve: resolveByUserID, handler: operations.CreateStorageKey,
		},
		store.ActionRetrieveStorageKey: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.RetrieveStorageKey,
		},
		store.ActionGenerateSecret: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.GenerateSecret,
		},
		store.ActionRetrieveSecret: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.RetrieveSecret,
		},
		store.ActionExportSecret: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.ExportSecret,
		},
		store.ActionImportSigningKey: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.ImportSigningKey,
		},
		store.ActionRemoteGenerateSigningKey: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.RemoteGenerateSigningKey,
		},
		store.ActionExportSigningKey: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.ExportSigningKey,
		},
		store.ActionRetrieveSigningKey: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.RetrieveSigningKey,
		},
		store.ActionRemoteSignBytes: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.RemoteSignBytes,
		},
		store.ActionDeleteKey: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.DeleteKey,
		},
		store.ActionGetUserID: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.GetUserID,
		},
		store.ActionLogout: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.Logout,
		},
		store.ActionRetrieveAuditEvents: {
			flavor: channel.Authenticated, resolve: resolveBySession, handler: operations.RetrieveAuditEvents,
		},
	}
}
