// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

// CreateAuditEvent appends one row to the audit log (spec §4.7). The audit
// log is append-only: there is no corresponding update or delete method.
func (s *postgresStore) CreateAuditEvent(ctx context.Context, requestID uuid.UUID, accountID domain.AccountID, keyID *domain.KeyIDBytes, action ClientAction, status AuditStatus) error {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateAuditEventQuery(ctx, requestID, accountID, keyID, action, status)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "postgresStore.CreateAuditEvent").Msg("failed to insert audit event")
		return fmt.Errorf("%w: %s", ErrExecutingStatement, err)
	}
	return nil
}

// FindAuditEvents returns every audit event belonging to accountID that
// matches filter, ordered oldest-first (spec §4.7, RetrieveAuditEvents).
func (s *postgresStore) FindAuditEvents(ctx context.Context, accountID domain.AccountID, filter AuditEventFilter) ([]AuditEvent, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindAuditEventsQuery(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "postgresStore.FindAuditEvents").Msg("failed to query audit events")
		return nil, fmt.Errorf("%w: %s", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var event AuditEvent
		var rawKeyID []byte
		if err := rows.Scan(&event.EventID, &event.RequestID, &event.AccountID, &rawKeyID, &event.Action, &event.Status, &event.Timestamp); err != nil {
			log.Err(err).Str("func", "postgresStore.FindAuditEvents").Msg("failed to scan audit event row")
			return nil, fmt.Errorf("%w: %s", ErrScanningRows, err)
		}
		if rawKeyID != nil {
			var keyID domain.KeyIDBytes
			copy(keyID[:], rawKeyID)
			event.KeyID = &keyID
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "postgresStore.FindAuditEvents").Msg("error iterating audit event rows")
		return nil, fmt.Errorf("%w: %s", ErrScanningRows, err)
	}

	return events, nil
}
