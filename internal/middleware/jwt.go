package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// rejects tokens present in the revocation set, and injects the token's
// claims into the request context. The provided secret must match the one
// used when issuing tokens. Handlers access the authenticated caller via
// c.Get("user_id"), c.Get("email"), c.Get("role"), c.Get("firstname") and
// c.Get("lastname"); the raw token is kept under "token" so logout can
// revoke it without re-reading the header.
func JWTAuth(secret string, revoked repository.RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// A structurally valid token may still have been revoked by
			// logout; the revocation set is consulted on every request.
			isRevoked, err := revoked.IsRevoked(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization check failed"})
			}
			if isRevoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			c.Set("firstname", claims.FirstName)
			c.Set("lastname", claims.LastName)
			c.Set("token", raw)
			return next(c)
		}
	}
}
