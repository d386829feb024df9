package model

import "time"

// Statuses a password change request moves through. A request starts
// PENDING and is resolved exactly once to APPROVED or REJECTED; both
// are terminal. Requests are never deleted so the table doubles as an
// audit trail of credential changes.
const (
	ChangeStatusPending  = "PENDING"
	ChangeStatusApproved = "APPROVED"
	ChangeStatusRejected = "REJECTED"
)

// PasswordChangeRequest models a row in the `password_change_requests`
// table. NewPasswordHash holds the bcrypt hash of the proposed
// password captured at submission time; approval copies exactly that
// hash onto the user, regardless of any profile changes made in the
// interim. At most one PENDING request exists per user.
//
// Fields:
//  ID              – primary key identifier (UUID string).
//  UserID          – account the change applies to.
//  NewPasswordHash – bcrypt hash of the proposed password.
//  Status          – PENDING, APPROVED or REJECTED.
//  AdminID         – resolving administrator (null while PENDING).
//  CreatedAt       – submission timestamp.
//  UpdatedAt       – resolution timestamp (null while PENDING).
type PasswordChangeRequest struct {
	ID              string     // password_change_requests.id
	UserID          string     // password_change_requests.user_id
	NewPasswordHash string     // password_change_requests.new_password_hash
	Status          string     // password_change_requests.status
	AdminID         *string    // password_change_requests.admin_id (nullable)
	CreatedAt       time.Time  // password_change_requests.created_at
	UpdatedAt       *time.Time // password_change_requests.updated_at (nullable)
}

// Resolved reports whether the request has reached a terminal status.
func (r PasswordChangeRequest) Resolved() bool {
	return r.Status != ChangeStatusPending
}

// PendingChangeView is a PENDING request enriched with the requester's
// display name and email for administrator review. When the owning
// account has been deleted since submission the user fields stay
// empty rather than failing the whole listing.
type PendingChangeView struct {
	Request       PasswordChangeRequest
	UserFirstName string
	UserLastName  string
	UserEmail     string
}
