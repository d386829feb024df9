// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish between different failure scenarios without inspecting
// driver-specific error strings. Not-found conditions are reported as
// sql.ErrNoRows, matching what database/sql itself returns from
// QueryRowContext, so callers only ever check one value.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update collides with the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrPendingExists is returned when a second PENDING password change
// request would be created for the same user. The table carries a
// unique index on (user_id, pending_flag) where pending_flag is a
// generated column that is 1 for PENDING rows and NULL otherwise, so
// the constraint holds even when two submissions race.
var ErrPendingExists = errors.New("pending password change request already exists")

// ErrDeviceExists is returned when a (user, device token) pair is
// already registered. Callers treat it as a no-op success.
var ErrDeviceExists = errors.New("device token already registered")
