// Package notifier defines the best-effort notification side channel.
// Account mutations publish a message here; delivery is decoupled from
// the primary operation and a failed send never rolls it back.
package notifier

import "context"

// Notification categories, one per account event. They double as the
// routing hint for downstream consumers.
const (
	CategoryUserCreation      = "user-creation"
	CategoryAccountDeletion   = "account-deletion"
	CategoryPasswordRequested = "password-reset-request"
	CategoryPasswordApproved  = "password-reset-approval"
	CategoryPasswordRejected  = "password-reset-rejection"
)

// Notification is the payload handed to the gateway. Authorization
// optionally forwards the caller's bearer token so the downstream
// service can attribute the event.
type Notification struct {
	Category      string `json:"category"`
	Recipient     string `json:"recipient"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	Authorization string `json:"authorization,omitempty"`
	SentAt        string `json:"sent_at"`
}

// Notifier sends a notification and reports whether delivery was
// accepted. Callers are expected to treat errors as secondary warnings
// attached to an otherwise successful response.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
