// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/rkhiriev/lock-keeper/internal/domain"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	accountsTable    = "accounts"
	secretsTable     = "secrets"
	auditEventsTable = "audit_events"
)

var accountColumnList = []string{"account_id", "user_id", "account_name", "server_registration", "encrypted_storage_key"}

// buildCreateAccountQuery builds the INSERT used by CreateAccount.
func buildCreateAccountQuery(ctx context.Context, userID domain.UserID, accountName string, serverRegistration []byte) (string, []any, error) {
	qb := psql.Insert(accountsTable).
		Columns("user_id", "account_name", "server_registration").
		Values(userID.UUID(), accountName, serverRegistration).
		Suffix("RETURNING " + "account_id, user_id, account_name, server_registration, encrypted_storage_key")

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built create account query")
	return query, args, nil
}

// buildFindAccountByNameQuery builds the SELECT used by FindAccountByName.
func buildFindAccountByNameQuery(ctx context.Context, accountName string) (string, []any, error) {
	qb := psql.Select(accountColumnList...).From(accountsTable).Where(sq.Eq{"account_name": accountName})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built find account by name query")
	return query, args, nil
}

// buildFindAccountByIDQuery builds the SELECT used by FindAccountByID.
func buildFindAccountByIDQuery(ctx context.Context, accountID domain.AccountID) (string, []any, error) {
	qb := psql.Select(accountColumnList...).From(accountsTable).Where(sq.Eq{"account_id": int64(accountID)})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built find account by id query")
	return query, args, nil
}

// buildFindAccountByUserIDQuery builds the SELECT used by FindAccountByUserID.
func buildFindAccountByUserIDQuery(ctx context.Context, userID domain.UserID) (string, []any, error) {
	qb := psql.Select(accountColumnList...).From(accountsTable).Where(sq.Eq{"user_id": userID.UUID()})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built find account by user id query")
	return query, args, nil
}

// buildDeleteAccountQuery builds the DELETE used by DeleteAccount. Deleting
// the account row cascades to its secrets and audit events.
func buildDeleteAccountQuery(ctx context.Context, accountID domain.AccountID) (string, []any, error) {
	qb := psql.Delete(accountsTable).Where(sq.Eq{"account_id": int64(accountID)})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built delete account query")
	return query, args, nil
}

// buildSetStorageKeyQuery builds the UPDATE used by SetStorageKey.
func buildSetStorageKeyQuery(ctx context.Context, accountID domain.AccountID, encryptedStorageKey []byte) (string, []any, error) {
	qb := psql.Update(accountsTable).
		Set("encrypted_storage_key", encryptedStorageKey).
		Where(sq.Eq{"account_id": int64(accountID)})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built set storage key query")
	return query, args, nil
}

// buildAddSecretQuery builds the INSERT used by AddSecret.
func buildAddSecretQuery(ctx context.Context, secret StoredSecret) (string, []any, error) {
	qb := psql.Insert(secretsTable).
		Columns("key_id", "user_id", "secret_type", "encrypted_payload", "retrieved").
		Values(secret.KeyID[:], secret.UserID.UUID(), int(secret.Type), secret.EncryptedPayload, false)

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built add secret query")
	return query, args, nil
}

// buildGetSecretQuery builds the SELECT used by GetSecret. It filters by
// key_id alone, not also user_id: GetSecret distinguishes "no such key" from
// "key exists but belongs to someone else" after the scan, and a combined
// WHERE clause would collapse both into the same sql.ErrNoRows. Row-level
// locking (FOR UPDATE) lets the caller mark the secret retrieved in the
// same transaction without a lost-update race.
func buildGetSecretQuery(ctx context.Context, keyID domain.KeyIDBytes) (string, []any, error) {
	qb := psql.Select("key_id", "user_id", "secret_type", "encrypted_payload", "retrieved").
		From(secretsTable).
		Where(sq.Eq{"key_id": keyID[:]}).
		Suffix("FOR UPDATE")

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built get secret query")
	return query, args, nil
}

// buildMarkSecretRetrievedQuery builds the UPDATE that marks a secret
// retrieved on first successful GetSecret.
func buildMarkSecretRetrievedQuery(ctx context.Context, keyID domain.KeyIDBytes) (string, []any, error) {
	qb := psql.Update(secretsTable).
		Set("retrieved", true).
		Where(sq.Eq{"key_id": keyID[:]})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built mark secret retrieved query")
	return query, args, nil
}

// buildDeleteSecretQuery builds the DELETE used by DeleteSecret.
func buildDeleteSecretQuery(ctx context.Context, userID domain.UserID, keyID domain.KeyIDBytes) (string, []any, error) {
	qb := psql.Delete(secretsTable).
		Where(sq.Eq{"key_id": keyID[:], "user_id": userID.UUID()})

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built delete secret query")
	return query, args, nil
}

// buildCreateAuditEventQuery builds the INSERT used by CreateAuditEvent.
func buildCreateAuditEventQuery(ctx context.Context, requestID uuid.UUID, accountID domain.AccountID, keyID *domain.KeyIDBytes, action ClientAction, status AuditStatus) (string, []any, error) {
	var keyIDArg any
	if keyID != nil {
		keyIDArg = keyID[:]
	}

	qb := psql.Insert(auditEventsTable).
		Columns("request_id", "account_id", "key_id", "action", "status").
		Values(requestID, int64(accountID), keyIDArg, int(action), int(status))

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Msg("built create audit event query")
	return query, args, nil
}

// buildFindAuditEventsQuery builds the SELECT used by FindAuditEvents,
// applying filter's optional predicates (spec §4.3).
func buildFindAuditEventsQuery(ctx context.Context, accountID domain.AccountID, filter AuditEventFilter) (string, []any, error) {
	qb := psql.Select("event_id", "request_id", "account_id", "key_id", "action", "status", "created_at").
		From(auditEventsTable).
		Where(sq.Eq{"account_id": int64(accountID)}).
		OrderBy("event_id ASC")

	if filter.Before != nil {
		qb = qb.Where(sq.Lt{"created_at": *filter.Before})
	}
	if filter.After != nil {
		qb = qb.Where(sq.Gt{"created_at": *filter.After})
	}
	if filter.RequestID != nil {
		qb = qb.Where(sq.Eq{"request_id": *filter.RequestID})
	}
	if len(filter.KeyIDs) > 0 {
		ids := make([][]byte, len(filter.KeyIDs))
		for i, id := range filter.KeyIDs {
			ids[i] = id[:]
		}
		qb = qb.Where(sq.Eq{"key_id": ids})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrBuildingSQLQuery, err)
	}
	logger.FromContext(ctx).Debug().Str("query", query).Any("args", args).Msg("built find audit events query")
	return query, args, nil
}
