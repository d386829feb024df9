package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/notifier"
	"github.com/iliyamo/user-account-service/internal/repository"
)

// In-memory fakes for the service-level store interfaces. They mirror
// the contracts of the MySQL repositories: sql.ErrNoRows for missing
// rows, the repository sentinels for duplicates, and the same
// credential-is-not-touched-by-Update behavior.

// staleExists makes ExistsByEmail report the email as free even when a
// row holds it, reproducing a create that loses the race between the
// advisory precheck and the unique-index insert.
type fakeUserStore struct {
	mu          sync.Mutex
	users       map[string]model.User
	staleExists bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if s.staleExists {
		return false, nil
	}
	_, err := s.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *fakeUserStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return sql.ErrNoRows
	}
	for id, other := range s.users {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.PasswordHash = existing.PasswordHash // Update never writes the credential
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) List(_ context.Context, offset, limit int) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type fakeAddressStore struct {
	mu        sync.Mutex
	addresses map[string]model.Address
}

func newFakeAddressStore() *fakeAddressStore {
	return &fakeAddressStore{addresses: make(map[string]model.Address)}
}

func (s *fakeAddressStore) Create(_ context.Context, a *model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.addresses[a.ID] = *a
	return nil
}

func (s *fakeAddressStore) GetByID(_ context.Context, id string) (model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return model.Address{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *fakeAddressStore) Update(_ context.Context, a *model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addresses[a.ID]; !ok {
		return sql.ErrNoRows
	}
	a.UpdatedAt = time.Now().UTC()
	s.addresses[a.ID] = *a
	return nil
}

func (s *fakeAddressStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addresses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.addresses, id)
	return nil
}

type fakeDeviceStore struct {
	mu      sync.Mutex
	devices []model.UserDevice
}

func newFakeDeviceStore() *fakeDeviceStore { return &fakeDeviceStore{} }

func (s *fakeDeviceStore) FindByUserID(_ context.Context, userID string) ([]model.UserDevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserDevice
	for _, d := range s.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeDeviceStore) Create(_ context.Context, d *model.UserDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.devices {
		if existing.UserID == d.UserID && existing.DeviceToken == d.DeviceToken {
			return repository.ErrDeviceExists
		}
	}
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	s.devices = append(s.devices, *d)
	return nil
}

// fakeChangeStore mirrors the transactional coupling of the real store:
// Approve writes both the request row and the account credential, and
// failCredential makes that write fail without touching either, the way
// a rolled-back transaction would.
type fakeChangeStore struct {
	mu             sync.Mutex
	users          *fakeUserStore
	requests       map[string]model.PasswordChangeRequest
	failCredential bool
}

func newFakeChangeStore(users *fakeUserStore) *fakeChangeStore {
	return &fakeChangeStore{users: users, requests: make(map[string]model.PasswordChangeRequest)}
}

func (s *fakeChangeStore) Create(_ context.Context, req *model.PasswordChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.UserID == req.UserID && existing.Status == model.ChangeStatusPending {
			return repository.ErrPendingExists
		}
	}
	req.ID = uuid.NewString()
	req.Status = model.ChangeStatusPending
	req.CreatedAt = time.Now().UTC()
	s.requests[req.ID] = *req
	return nil
}

func (s *fakeChangeStore) GetByID(_ context.Context, id string) (model.PasswordChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return model.PasswordChangeRequest{}, sql.ErrNoRows
	}
	return req, nil
}

func (s *fakeChangeStore) FindPendingByUserID(_ context.Context, userID string) (model.PasswordChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.UserID == userID && req.Status == model.ChangeStatusPending {
			return req, nil
		}
	}
	return model.PasswordChangeRequest{}, sql.ErrNoRows
}

func (s *fakeChangeStore) FindByStatus(_ context.Context, status string) ([]model.PasswordChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PasswordChangeRequest
	for _, req := range s.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *fakeChangeStore) Resolve(_ context.Context, id, status, adminID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || req.Status != model.ChangeStatusPending {
		return false, nil
	}
	req.Status = status
	req.AdminID = &adminID
	req.UpdatedAt = &at
	s.requests[id] = req
	return true, nil
}

func (s *fakeChangeStore) Approve(ctx context.Context, id, adminID string, at time.Time, userID, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || req.Status != model.ChangeStatusPending {
		return false, nil
	}
	if s.failCredential {
		return false, errors.New("credential write failed")
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return false, err
	}
	req.Status = model.ChangeStatusApproved
	req.AdminID = &adminID
	req.UpdatedAt = &at
	s.requests[id] = req
	return true, nil
}

// fakeNotifier records every send and can be flipped to fail, which is
// how the partial-failure semantics are exercised.
type fakeNotifier struct {
	mu   sync.Mutex
	fail bool
	sent []notifier.Notification
}

func (n *fakeNotifier) Send(_ context.Context, msg notifier.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("gateway unreachable")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) sentCategories() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, msg := range n.sent {
		out = append(out, msg.Category)
	}
	return out
}
