package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/notifier"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/service"
	"github.com/iliyamo/user-account-service/internal/utils"
)

type userFixture struct {
	users     *fakeUserStore
	addresses *fakeAddressStore
	devices   *fakeDeviceStore
	notify    *fakeNotifier
	svc       *service.UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:     newFakeUserStore(),
		addresses: newFakeAddressStore(),
		devices:   newFakeDeviceStore(),
		notify:    &fakeNotifier{},
	}
	f.svc = service.NewUserService(f.users, f.addresses, f.devices, f.notify, bcrypt.MinCost)
	return f
}

func newAccount(email string) model.User {
	return model.User{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       email,
		Gender:      model.GenderFemale,
		DateOfBirth: time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "555-0100",
		Role:        model.RoleUser,
	}
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hashed credential and sends a welcome message", func(t *testing.T) {
		f := newUserFixture()
		u := newAccount("ada@x.com")
		warn, err := f.svc.Create(ctx, &u, nil, "S1", "Bearer tok")
		require.NoError(t, err)
		assert.True(t, warn.None())
		assert.NotEmpty(t, u.ID)

		stored, err := f.users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "S1", stored.PasswordHash)
		assert.True(t, utils.VerifyPassword(stored.PasswordHash, "S1"))
		assert.Equal(t, []string{notifier.CategoryUserCreation}, f.notify.sentCategories())
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		f := newUserFixture()
		first := newAccount("dup@x.com")
		_, err := f.svc.Create(ctx, &first, nil, "S1", "")
		require.NoError(t, err)

		second := newAccount("dup@x.com")
		_, err = f.svc.Create(ctx, &second, nil, "S2", "")
		assert.ErrorIs(t, err, repository.ErrEmailExists)
	})

	t.Run("creates and attaches the supplied address", func(t *testing.T) {
		f := newUserFixture()
		u := newAccount("home@x.com")
		addr := model.Address{StreetAddress: "1 Main St", City: "Springfield", Country: "US", PostalCode: "12345", AddressType: model.AddressTypeHome}
		_, err := f.svc.Create(ctx, &u, &addr, "S1", "")
		require.NoError(t, err)
		require.NotNil(t, u.AddressID)
		assert.Equal(t, addr.ID, *u.AddressID)
	})

	t.Run("a lost duplicate-email race leaves no orphan address", func(t *testing.T) {
		f := newUserFixture()
		first := newAccount("race@x.com")
		_, err := f.svc.Create(ctx, &first, nil, "S1", "")
		require.NoError(t, err)

		// The precheck misses the winner; the unique index catches it.
		f.users.staleExists = true
		second := newAccount("race@x.com")
		addr := model.Address{StreetAddress: "9 Orphan Ln", City: "Springfield", Country: "US", PostalCode: "12345", AddressType: model.AddressTypeHome}
		_, err = f.svc.Create(ctx, &second, &addr, "S2", "")
		assert.ErrorIs(t, err, repository.ErrEmailExists)
		assert.Empty(t, f.addresses.addresses, "the pre-inserted address must be taken back out")
		assert.Nil(t, second.AddressID)
	})

	t.Run("a failed notification yields a warning, not an error", func(t *testing.T) {
		f := newUserFixture()
		f.notify.fail = true
		u := newAccount("warn@x.com")
		warn, err := f.svc.Create(ctx, &u, nil, "S1", "")
		require.NoError(t, err)
		assert.False(t, warn.None())

		_, err = f.users.GetByID(ctx, u.ID)
		assert.NoError(t, err, "account must persist even when the notification fails")
	})
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces profile fields but never the credential", func(t *testing.T) {
		f := newUserFixture()
		u := newAccount("ada@x.com")
		_, err := f.svc.Create(ctx, &u, nil, "S1", "")
		require.NoError(t, err)

		in := newAccount("ada.new@x.com")
		in.FirstName = "Augusta"
		updated, err := f.svc.Update(ctx, u.ID, in, nil)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", updated.FirstName)
		assert.Equal(t, "ada.new@x.com", updated.Email)

		stored, err := f.users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, utils.VerifyPassword(stored.PasswordHash, "S1"), "profile update must not touch the credential")
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.svc.Update(ctx, "missing", newAccount("x@x.com"), nil)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("attaches a new address when none is owned", func(t *testing.T) {
		f := newUserFixture()
		u := newAccount("ada@x.com")
		_, err := f.svc.Create(ctx, &u, nil, "S1", "")
		require.NoError(t, err)

		addr := model.Address{StreetAddress: "2 Side St", City: "Springfield", Country: "US", PostalCode: "12345", AddressType: model.AddressTypeWork}
		updated, err := f.svc.Update(ctx, u.ID, newAccount("ada@x.com"), &addr)
		require.NoError(t, err)
		require.NotNil(t, updated.AddressID)
		assert.Equal(t, addr.ID, *updated.AddressID)
	})
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the account and notifies the former email", func(t *testing.T) {
		f := newUserFixture()
		u := newAccount("gone@x.com")
		_, err := f.svc.Create(ctx, &u, nil, "S1", "")
		require.NoError(t, err)

		warn, err := f.svc.Delete(ctx, u.ID, "")
		require.NoError(t, err)
		assert.True(t, warn.None())

		_, err = f.svc.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Contains(t, f.notify.sentCategories(), notifier.CategoryAccountDeletion)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.svc.Delete(ctx, "missing", "")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("deletion succeeds with a warning when the notifier is down", func(t *testing.T) {
		f := newUserFixture()
		u := newAccount("warn@x.com")
		_, err := f.svc.Create(ctx, &u, nil, "S1", "")
		require.NoError(t, err)

		f.notify.fail = true
		warn, err := f.svc.Delete(ctx, u.ID, "")
		require.NoError(t, err)
		assert.False(t, warn.None())
		_, err = f.svc.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := newAccount("push@x.com")
	_, err := f.svc.Create(ctx, &u, nil, "S1", "")
	require.NoError(t, err)

	t.Run("first registration stores the token", func(t *testing.T) {
		require.NoError(t, f.svc.RegisterDevice(ctx, "tok-1", "push@x.com"))
		devices, err := f.devices.FindByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, devices, 1)
	})

	t.Run("re-registering the same token is a no-op success", func(t *testing.T) {
		require.NoError(t, f.svc.RegisterDevice(ctx, "tok-1", "push@x.com"))
		devices, err := f.devices.FindByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, devices, 1)
	})

	t.Run("a second token is added alongside", func(t *testing.T) {
		require.NoError(t, f.svc.RegisterDevice(ctx, "tok-2", "push@x.com"))
		devices, err := f.devices.FindByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, devices, 2)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := f.svc.RegisterDevice(ctx, "tok-3", "ghost@x.com")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestUserList(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		u := newAccount(email)
		_, err := f.svc.Create(ctx, &u, nil, "S1", "")
		require.NoError(t, err)
	}

	users, total, err := f.svc.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 2)

	users, total, err = f.svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 1)
}

func TestAddressCRUD(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()

	a := model.Address{StreetAddress: "1 Main St", City: "Springfield", State: "IL", Country: "US", PostalCode: "12345", AddressType: model.AddressTypeBilling}
	require.NoError(t, f.svc.CreateAddress(ctx, &a))
	require.NotEmpty(t, a.ID)

	got, err := f.svc.GetAddress(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got.City)

	got.City = "Shelbyville"
	updated, err := f.svc.UpdateAddress(ctx, a.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", updated.City)

	require.NoError(t, f.svc.DeleteAddress(ctx, a.ID))
	_, err = f.svc.GetAddress(ctx, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.svc.GetAddress(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
