// Package service implements the account directory, session manager and
// credential change workflow on top of the repository and notifier
// layers. Methods return sentinel errors that handlers translate into
// HTTP statuses; duplicate errors from the repository package
// (ErrEmailExists, ErrPendingExists) pass through unchanged.
package service

import "errors"

// ErrNotFound is returned when a user, address or change request does
// not exist. Repository-level sql.ErrNoRows never escapes the service
// layer; it is always mapped to this value.
var ErrNotFound = errors.New("resource not found")

// ErrInvalidCredentials is returned for a failed login or an incorrect
// current password on a change request. Unknown email and wrong
// password produce the same value so callers cannot probe which
// accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned by logout when the presented token is
// absent, malformed or expired.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenIssuance is returned when the signer cannot produce a token
// for an otherwise successful login.
var ErrTokenIssuance = errors.New("failed to issue token")

// ErrForbidden is returned when the acting account lacks the role an
// operation requires, e.g. a non-admin resolving a change request.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when a change request is resolved a
// second time. Terminal statuses are final; nothing is re-applied.
var ErrInvalidState = errors.New("request already resolved")
