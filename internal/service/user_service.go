package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/notifier"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// UserService orchestrates account creation, profile maintenance and
// deletion, enforces email uniqueness and dispatches best-effort
// notifications. A failed notification is reported as a Warning on the
// success path and never rolls back the primary mutation.
type UserService struct {
	Users      UserStore
	Addresses  AddressStore
	Devices    DeviceStore
	Notify     notifier.Notifier
	BcryptCost int
}

func NewUserService(users UserStore, addresses AddressStore, devices DeviceStore, n notifier.Notifier, bcryptCost int) *UserService {
	return &UserService{Users: users, Addresses: addresses, Devices: devices, Notify: n, BcryptCost: bcryptCost}
}

// Create registers a new account with an optional owned address. The
// email uniqueness check is advisory; the unique index behind
// UserStore.Create is the authority, so two concurrent creates with
// the same email cannot both succeed.
func (s *UserService) Create(ctx context.Context, u *model.User, addr *model.Address, password, authorization string) (Warning, error) {
	taken, err := s.Users.ExistsByEmail(ctx, u.Email)
	if err != nil {
		log.Printf("users: exists check failed for %s: %v", u.Email, err)
		return "", fmt.Errorf("create user: %w", err)
	}
	if taken {
		return "", repository.ErrEmailExists
	}

	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	u.PasswordHash = hash

	if addr != nil {
		if err := s.Addresses.Create(ctx, addr); err != nil {
			log.Printf("users: address insert failed: %v", err)
			return "", fmt.Errorf("create user: %w", err)
		}
		u.AddressID = &addr.ID
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if addr != nil {
			// The address was inserted first; take it back out so a lost
			// duplicate-email race does not leave an unowned row behind.
			if derr := s.Addresses.Delete(ctx, addr.ID); derr != nil {
				log.Printf("users: orphan address cleanup failed for %s: %v", addr.ID, derr)
			}
			u.AddressID = nil
		}
		return "", err // ErrEmailExists passes through
	}

	warn := s.send(ctx, notifier.Notification{
		Category:      notifier.CategoryUserCreation,
		Recipient:     u.Email,
		Subject:       "Welcome " + u.FirstName + "!",
		Message:       "Your account has been created successfully.",
		Authorization: authorization,
	}, "account created, but the welcome notification could not be sent")
	return warn, nil
}

// GetByID fetches a single account.
func (s *UserService) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, asNotFound("get user", id, err)
	}
	return u, nil
}

// GetByEmail fetches a single account by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, asNotFound("get user by email", email, err)
	}
	return u, nil
}

// List returns one page of accounts plus the total count.
func (s *UserService) List(ctx context.Context, page, size int) ([]model.User, int, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 20
	}
	users, total, err := s.Users.List(ctx, page*size, size)
	if err != nil {
		log.Printf("users: list failed: %v", err)
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Update replaces the mutable profile fields of an account. The stored
// credential is never touched here; password changes go exclusively
// through the approval workflow. When an address is supplied it is
// updated in place if the account already owns one, otherwise created
// and attached.
func (s *UserService) Update(ctx context.Context, id string, in model.User, addr *model.Address) (model.User, error) {
	existing, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, asNotFound("update user", id, err)
	}

	existing.FirstName = in.FirstName
	existing.LastName = in.LastName
	existing.Email = in.Email
	existing.Gender = in.Gender
	existing.DateOfBirth = in.DateOfBirth
	existing.PhoneNumber = in.PhoneNumber
	existing.Role = in.Role

	if addr != nil {
		if existing.AddressID != nil {
			addr.ID = *existing.AddressID
			if err := s.Addresses.Update(ctx, addr); err != nil {
				log.Printf("users: address update failed for %s: %v", id, err)
				return model.User{}, fmt.Errorf("update user: %w", err)
			}
		} else {
			if err := s.Addresses.Create(ctx, addr); err != nil {
				log.Printf("users: address insert failed for %s: %v", id, err)
				return model.User{}, fmt.Errorf("update user: %w", err)
			}
			existing.AddressID = &addr.ID
		}
	}

	if err := s.Users.Update(ctx, &existing); err != nil {
		return model.User{}, err // ErrEmailExists passes through
	}
	return existing, nil
}

// Delete removes an account together with its owned address and device
// registrations, then notifies the former email address best-effort.
func (s *UserService) Delete(ctx context.Context, id, authorization string) (Warning, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return "", asNotFound("delete user", id, err)
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return "", asNotFound("delete user", id, err)
	}

	warn := s.send(ctx, notifier.Notification{
		Category:      notifier.CategoryAccountDeletion,
		Recipient:     u.Email,
		Subject:       "Account deleted",
		Message:       "Your account was deleted",
		Authorization: authorization,
	}, "account deleted, but the deletion notification could not be sent")
	return warn, nil
}

// RegisterDevice associates a push token with the account behind the
// given email. Re-registering a known token is a no-op success; the
// unique (user, token) index covers the race between the lookup and
// the insert.
func (s *UserService) RegisterDevice(ctx context.Context, deviceToken, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return asNotFound("register device", email, err)
	}
	devices, err := s.Devices.FindByUserID(ctx, u.ID)
	if err != nil {
		log.Printf("users: device lookup failed for %s: %v", u.ID, err)
		return fmt.Errorf("register device: %w", err)
	}
	for _, d := range devices {
		if d.DeviceToken == deviceToken {
			return nil
		}
	}
	err = s.Devices.Create(ctx, &model.UserDevice{UserID: u.ID, DeviceToken: deviceToken})
	if err != nil && !errors.Is(err, repository.ErrDeviceExists) {
		log.Printf("users: device insert failed for %s: %v", u.ID, err)
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

// CreateAddress stores a standalone address, not yet owned by any
// account.
func (s *UserService) CreateAddress(ctx context.Context, a *model.Address) error {
	if err := s.Addresses.Create(ctx, a); err != nil {
		log.Printf("users: address insert failed: %v", err)
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

// GetAddress fetches an address by id.
func (s *UserService) GetAddress(ctx context.Context, id string) (model.Address, error) {
	a, err := s.Addresses.GetByID(ctx, id)
	if err != nil {
		return model.Address{}, asNotFound("get address", id, err)
	}
	return a, nil
}

// UpdateAddress replaces an address's fields.
func (s *UserService) UpdateAddress(ctx context.Context, id string, a model.Address) (model.Address, error) {
	if _, err := s.Addresses.GetByID(ctx, id); err != nil {
		return model.Address{}, asNotFound("update address", id, err)
	}
	a.ID = id
	if err := s.Addresses.Update(ctx, &a); err != nil {
		log.Printf("users: address update failed for %s: %v", id, err)
		return model.Address{}, fmt.Errorf("update address: %w", err)
	}
	return a, nil
}

// DeleteAddress removes an address by id.
func (s *UserService) DeleteAddress(ctx context.Context, id string) error {
	if err := s.Addresses.Delete(ctx, id); err != nil {
		return asNotFound("delete address", id, err)
	}
	return nil
}

// send dispatches one notification and folds a failure into a Warning.
func (s *UserService) send(ctx context.Context, n notifier.Notification, warn string) Warning {
	if err := s.Notify.Send(ctx, n); err != nil {
		log.Printf("users: %s notification failed for %s: %v", n.Category, n.Recipient, err)
		return Warning(warn)
	}
	return ""
}

// asNotFound maps sql.ErrNoRows to ErrNotFound and logs anything else
// with enough context to find the failing operation.
func asNotFound(op, target string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	log.Printf("users: %s failed for %s: %v", op, target, err)
	return fmt.Errorf("%s: %w", op, err)
}
