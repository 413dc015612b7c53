// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package operations

import (
	"context"

	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
)

// RetrieveAuditEvents returns the caller's audit log, newest first (spec
// §4.8), narrowed by the client-supplied filter.
func RetrieveAuditEvents(ctx context.Context, deps Deps, call Call) (Outcome, error) {
	frame, err := call.Channel.Receive(ctx)
	if err != nil {
		return Outcome{}, err
	}
	filterMsg, err := lockkeeperpb.UnmarshalAuditEventFilterMessage(frame)
	if err != nil {
		return Outcome{}, err
	}

	events, err := deps.Store.FindAuditEvents(ctx, call.Account.AccountID, filterMsg.ToStoreFilter())
	if err != nil {
		return Outcome{}, WrapStore(err)
	}

	resp := lockkeeperpb.AuditEventListMessage{Events: make([]lockkeeperpb.AuditEventMessage, 0, len(events))}
	for i := len(events) - 1; i >= 0; i-- {
		resp.Events = append(resp.Events, lockkeeperpb.AuditEventMessageFromStore(events[i]))
	}

	if err := call.Channel.Send(ctx, resp.Marshal()); err != nil {
		return Outcome{}, err
	}
	return Outcome{AccountID: call.Account.AccountID}, nil
}
