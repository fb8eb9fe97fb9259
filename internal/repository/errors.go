// Package repository defines error types and driver-error helpers
// that are reused across multiple repositories.  These sentinel
// values allow higher layers such as handlers to distinguish between
// different failure scenarios.  For example, ErrForbidden indicates
// that the current user is not authorized to perform an operation on
// a resource owned by someone else, while ErrConflict signals that
// an operation cannot proceed due to existing dependent records.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.  Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a court that still has active turns.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Sentinels for missing aggregates.  Turn and user lookups that feed
// the engine translate to engine sentinels instead (see
// turn_repository.go / user_repository.go).
var (
    ErrClubNotFound       = errors.New("club not found")
    ErrCourtNotFound      = errors.New("court not found")
    ErrInvitationNotFound = errors.New("invitation not found")
)

// mysqlErrNumber extracts the MySQL error number from err, or zero
// when err is not a driver error.
func mysqlErrNumber(err error) uint16 {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number
    }
    return 0
}

// isDuplicateEntry reports ER_DUP_ENTRY, raised when a unique key is
// violated (duplicate email, duplicate turn player, colliding slot).
func isDuplicateEntry(err error) bool {
    return mysqlErrNumber(err) == 1062
}

// isLockWaitTimeout reports ER_LOCK_WAIT_TIMEOUT, raised when a row
// lock could not be acquired within innodb_lock_wait_timeout.
func isLockWaitTimeout(err error) bool {
    n := mysqlErrNumber(err)
    return n == 1205 || n == 3572 // lock wait timeout / NOWAIT lock unavailable
}
