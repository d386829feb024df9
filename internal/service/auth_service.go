package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// AuthService validates credentials, mints access tokens and maintains
// the revocation set consulted by the auth middleware.
type AuthService struct {
	Users     UserStore
	Revoked   repository.RevocationStore
	JWTSecret string
	TTLMin    int
}

func NewAuthService(users UserStore, revoked repository.RevocationStore, secret string, ttlMin int) *AuthService {
	return &AuthService{Users: users, Revoked: revoked, JWTSecret: secret, TTLMin: ttlMin}
}

// Login verifies the email/password pair and mints an access token
// embedding the account's identity claims. Unknown email and wrong
// password are indistinguishable to the caller. Repeated failures do
// not lock the account out.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, model.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.AccessToken{}, model.User{}, ErrInvalidCredentials
		}
		log.Printf("auth: login query failed for %s: %v", email, err)
		return utils.AccessToken{}, model.User{}, fmt.Errorf("login: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, model.User{}, ErrInvalidCredentials
	}

	tok, err := utils.NewAccessToken(s.JWTSecret, utils.TokenClaims{
		Email:     u.Email,
		UserID:    u.ID,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, s.TTLMin)
	if err != nil {
		log.Printf("auth: token issuance failed for %s: %v", email, err)
		return utils.AccessToken{}, model.User{}, ErrTokenIssuance
	}
	return tok, u, nil
}

// Logout structurally validates the token and adds it to the
// revocation set stamped with the current time. Logging out with a
// still-valid token a second time succeeds and just re-stamps the
// entry; a token that fails validation is rejected outright.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrInvalidToken
	}
	if _, err := utils.ParseAccessToken(s.JWTSecret, rawToken); err != nil {
		return ErrInvalidToken
	}
	if err := s.Revoked.Revoke(ctx, rawToken, time.Now().UTC()); err != nil {
		log.Printf("auth: revoke failed: %v", err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
