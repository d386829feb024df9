package model

import "time"

// UserDevice links a user to a push notification token. A given
// (user, token) pair exists at most once; registering a token that is
// already known is a no-op at the service layer and a unique index on
// (user_id, device_token) backs that up under concurrency.
type UserDevice struct {
	ID          string    // user_devices.id
	UserID      string    // user_devices.user_id
	DeviceToken string    // user_devices.device_token
	CreatedAt   time.Time // user_devices.created_at
}
