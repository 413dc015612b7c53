// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package sessioncache

import "errors"

var (
	// ErrMissingSession is returned by Find when no row exists for the
	// given session id.
	ErrMissingSession = errors.New("sessioncache: missing session")

	// ErrExpiredSession is returned by Find when a row exists but its age
	// exceeds the configured expiration; the row is deleted before this
	// error is returned.
	ErrExpiredSession = errors.New("sessioncache: expired session")
)
