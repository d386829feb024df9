package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/service"
	"github.com/iliyamo/user-account-service/internal/utils"
)

const testSecret = "test-secret"

func seedUser(t *testing.T, store *fakeUserStore, email, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u := model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Gender:       model.GenderOther,
		DateOfBirth:  time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Role:         role,
	}
	require.NoError(t, store.Create(context.Background(), &u))
	return u
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	u := seedUser(t, store, "u@x.com", "S1", model.RoleUser)
	svc := service.NewAuthService(store, repository.NewMemoryRevocationStore(), testSecret, 15)
	ctx := context.Background()

	t.Run("valid credentials mint a token with identity claims", func(t *testing.T) {
		tok, got, err := svc.Login(ctx, "u@x.com", "S1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.True(t, tok.Exp.After(time.Now()))

		claims, err := utils.ParseAccessToken(testSecret, tok.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, "u@x.com", claims.Email)
		assert.Equal(t, model.RoleUser, claims.Role)
		assert.Equal(t, "Test", claims.FirstName)
		assert.Equal(t, "User", claims.LastName)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, _, errWrong := svc.Login(ctx, "u@x.com", "nope")
		_, _, errUnknown := svc.Login(ctx, "ghost@x.com", "S1")
		assert.ErrorIs(t, errWrong, service.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
		assert.Equal(t, errWrong, errUnknown)
	})

	t.Run("repeated failures do not lock the account", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, _, err := svc.Login(ctx, "u@x.com", "nope")
			assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		}
		_, _, err := svc.Login(ctx, "u@x.com", "S1")
		assert.NoError(t, err)
	})
}

func TestLogout(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "u@x.com", "S1", model.RoleUser)
	revoked := repository.NewMemoryRevocationStore()
	svc := service.NewAuthService(store, revoked, testSecret, 15)
	ctx := context.Background()

	tok, _, err := svc.Login(ctx, "u@x.com", "S1")
	require.NoError(t, err)

	t.Run("revokes the presented token", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, tok.Token))
		hit, err := revoked.IsRevoked(ctx, tok.Token)
		require.NoError(t, err)
		assert.True(t, hit)
	})

	t.Run("logging out again with the same token still succeeds", func(t *testing.T) {
		assert.NoError(t, svc.Logout(ctx, tok.Token))
	})

	t.Run("empty or malformed tokens are rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.Logout(ctx, ""), service.ErrInvalidToken)
		assert.ErrorIs(t, svc.Logout(ctx, "not.a.token"), service.ErrInvalidToken)
	})

	t.Run("a token signed with another secret is rejected", func(t *testing.T) {
		other, err := utils.NewAccessToken("other-secret", utils.TokenClaims{Email: "u@x.com"}, 15)
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Logout(ctx, other.Token), service.ErrInvalidToken)
	})
}
