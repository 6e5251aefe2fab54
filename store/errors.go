package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Error kinds surfaced by the persistence layer. Handlers map these onto
// HTTP statuses; the session uses ErrStoreUnavailable to decide fallback.
var (
	// ErrValidation marks bad mutation input. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing user or task referenced inside a
	// mutator. Aborts the transaction, never retried.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable marks a remote store that is unreachable or
	// denies access. Triggers the one-way fallback to local mode.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCorruptLocalState marks an unparsable local slot. Recovered by
	// reseeding defaults (accepted data loss).
	ErrCorruptLocalState = errors.New("corrupt local state")
)

// Postgres SQLSTATE codes that mean the database itself is unusable for us,
// the moral equivalent of permission-denied / unauthenticated / unavailable
// on a cloud document store.
var fallbackSQLStates = map[string]bool{
	"42501": true, // insufficient_privilege
	"28000": true, // invalid_authorization_specification
	"28P01": true, // invalid_password
	"3D000": true, // invalid_catalog_name (database missing)
	"53300": true, // too_many_connections
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"58000": true, // system_error
	"58030": true, // io_error
	"XX000": true, // internal_error
}

// RetryableAsFallback reports whether a remote failure should flip the
// session to local mode and retry the mutation there once. Validation and
// not-found errors are never in this class.
func RetryableAsFallback(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		if fallbackSQLStates[code] {
			return true
		}
		// connection_exception class
		if strings.HasPrefix(code, "08") {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"permission", "connection refused", "network", "no such host", "unavailable"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// isSerializationFailure reports a transaction conflict that the remote
// store retries transparently before anything surfaces to callers.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
