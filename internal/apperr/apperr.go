// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package apperr defines Lock Keeper's error taxonomy (spec §7): a closed
// set of error kinds shared across the OPAQUE handshake, the channel
// layer, the dispatcher, and every operation handler. internal/lockkeeperpb
// maps each [Kind] to a gRPC status; everything upstream of that boundary
// works with [Kind] alone, never with the surrounding transport.
package apperr

import "fmt"

// Kind is one of the error kinds named in spec §7. It is not a Go error
// type name — several distinct Go sentinel errors (e.g. from internal/store
// or internal/crypto) map onto the same Kind.
type Kind int

const (
	KindUnknown Kind = iota

	// Account errors.
	KindInvalidAccount          // not found or wrong credentials
	KindAccountAlreadyRegistered
	KindInvalidLogin // OPAQUE finish failed

	// Session errors.
	KindMissingSession
	KindExpiredSession
	KindInvalidSession
	KindAuthenticatedChannelNeeded
	KindUnauthenticatedChannelNeeded
	KindLogoutFailed

	// Storage errors.
	KindNoEntry
	KindDuplicateKeyID
	KindIncorrectAssociatedKeyData
	KindDatabaseError

	// Cryptographic errors.
	KindEncryptionFailed
	KindDecryptionFailed
	KindKeyDerivationFailed
	KindConversionError
	KindInvalidEncryptionKey
	KindSignatureVerificationFailed
	KindShardingFailed

	// Channel/IO errors.
	KindNoMessageReceived
	KindInvalidMessage
	KindMetadataNotFound

	// Configuration errors.
	KindPrivateKeyMissing
	KindOpaqueServerSetupNotDefined
	KindRemoteStorageKeyMissing
)

// String names the kind the way spec §7 names it, for logging.
func (k Kind) String() string {
	switch k {
	case KindInvalidAccount:
		return "InvalidAccount"
	case KindAccountAlreadyRegistered:
		return "AccountAlreadyRegistered"
	case KindInvalidLogin:
		return "InvalidLogin"
	case KindMissingSession:
		return "MissingSession"
	case KindExpiredSession:
		return "ExpiredSession"
	case KindInvalidSession:
		return "InvalidSession"
	case KindAuthenticatedChannelNeeded:
		return "AuthenticatedChannelNeeded"
	case KindUnauthenticatedChannelNeeded:
		return "UnauthenticatedChannelNeeded"
	case KindLogoutFailed:
		return "LogoutFailed"
	case KindNoEntry:
		return "NoEntry"
	case KindDuplicateKeyID:
		return "DuplicateKeyId"
	case KindIncorrectAssociatedKeyData:
		return "IncorrectAssociatedKeyData"
	case KindDatabaseError:
		return "DatabaseError"
	case KindEncryptionFailed:
		return "EncryptionFailed"
	case KindDecryptionFailed:
		return "DecryptionFailed"
	case KindKeyDerivationFailed:
		return "KeyDerivationFailed"
	case KindConversionError:
		return "ConversionError"
	case KindInvalidEncryptionKey:
		return "InvalidEncryptionKey"
	case KindSignatureVerificationFailed:
		return "SignatureVerificationFailed"
	case KindShardingFailed:
		return "ShardingFailed"
	case KindNoMessageReceived:
		return "NoMessageReceived"
	case KindInvalidMessage:
		return "InvalidMessage"
	case KindMetadataNotFound:
		return "MetadataNotFound"
	case KindPrivateKeyMissing:
		return "PrivateKeyMissing"
	case KindOpaqueServerSetupNotDefined:
		return "OpaqueServerSetupNotDefined"
	case KindRemoteStorageKeyMissing:
		return "RemoteStorageKeyMissing"
	default:
		return "Unknown"
	}
}

// Error pairs a [Kind] with the underlying cause, if any. The cause is
// logged server-side; only the [Kind] (or, for crypto/database kinds, a
// generic internal-error status) ever reaches the client.
type Error struct {
	Kind  Kind
	Cause error
}

// New builds an [*Error] with no underlying cause.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Wrap builds an [*Error] recording cause as the underlying reason.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an [*Error] with the same [Kind], so
// errors.Is(err, apperr.New(apperr.KindNoEntry)) works regardless of cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}
