package utils // package utils provides helper functions for token creation and validation

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned when a token fails parsing, signature
// verification or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string. Exp stores the expiration
// timestamp as a time.Time. Access tokens are encoded in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenClaims is the decoded claim set carried by an access token. The
// subject is the account email; the remaining fields let handlers and
// middleware identify the caller without a database round trip.
type TokenClaims struct {
	Email     string // sub claim
	UserID    string // uid claim
	Role      string // role claim
	FirstName string // firstname claim
	LastName  string // lastname claim
}

// NewAccessToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the identifying claims, and a TTL in minutes. The JWT
// embeds sub (email), uid, role, firstname, lastname plus the standard
// exp and iat claims.
func NewAccessToken(secret string, claims TokenClaims, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	mc := jwt.MapClaims{
		"sub":       claims.Email,
		"uid":       claims.UserID,
		"role":      claims.Role,
		"firstname": claims.FirstName,
		"lastname":  claims.LastName,
		"exp":       exp.Unix(),
		"iat":       now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates a raw token string against the secret and
// returns its decoded claims. Tokens signed with any method other than
// HMAC are rejected, as are expired or otherwise invalid tokens.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	return TokenClaims{
		Email:     strClaim(mc, "sub"),
		UserID:    strClaim(mc, "uid"),
		Role:      strClaim(mc, "role"),
		FirstName: strClaim(mc, "firstname"),
		LastName:  strClaim(mc, "lastname"),
	}, nil
}

func strClaim(mc jwt.MapClaims, key string) string {
	if v, ok := mc[key].(string); ok {
		return v
	}
	return ""
}
