package service

import (
	"context"
	"time"

	"github.com/iliyamo/user-account-service/internal/model"
)

// The store interfaces below describe what the services need from the
// persistence layer. The *Repo types in internal/repository satisfy
// them against MySQL; tests substitute in-memory fakes. Not-found is
// reported as sql.ErrNoRows, duplicates as the repository sentinels.

// UserStore is the account persistence contract.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]model.User, int, error)
}

// AddressStore is the address persistence contract.
type AddressStore interface {
	Create(ctx context.Context, a *model.Address) error
	GetByID(ctx context.Context, id string) (model.Address, error)
	Update(ctx context.Context, a *model.Address) error
	Delete(ctx context.Context, id string) error
}

// DeviceStore is the push token registration contract.
type DeviceStore interface {
	FindByUserID(ctx context.Context, userID string) ([]model.UserDevice, error)
	Create(ctx context.Context, d *model.UserDevice) error
}

// ChangeRequestStore is the credential change request contract. Approve
// covers both the request row and the account credential in a single
// transaction; Resolve handles the rejection path, which touches only
// the request row. Both report false when the request was already
// resolved.
type ChangeRequestStore interface {
	Create(ctx context.Context, req *model.PasswordChangeRequest) error
	GetByID(ctx context.Context, id string) (model.PasswordChangeRequest, error)
	FindPendingByUserID(ctx context.Context, userID string) (model.PasswordChangeRequest, error)
	FindByStatus(ctx context.Context, status string) ([]model.PasswordChangeRequest, error)
	Resolve(ctx context.Context, id, status, adminID string, at time.Time) (bool, error)
	Approve(ctx context.Context, id, adminID string, at time.Time, userID, passwordHash string) (bool, error)
}
