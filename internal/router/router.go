package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/user-account-service/internal/handler"    // handlers implement the endpoint logic
	"github.com/iliyamo/user-account-service/internal/middleware" // middleware for JWT authentication and role enforcement
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
)

// Handlers groups every handler the API needs so RegisterAPI stays a
// single call from main.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Addresses *handler.AddressHandler
	Devices   *handler.DeviceHandler
	Changes   *handler.PasswordChangeHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// used by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires all account, session, workflow, address and device
// endpoints with their middleware. Unauthenticated session operations
// live under /v1/auth; everything else under /v1 requires a valid,
// non-revoked bearer token, and role middleware narrows the admin-only
// surface.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, revoked repository.RevocationStore) {
	// Session endpoints. Logout validates and revokes the presented
	// token itself, so it deliberately sits outside the JWT middleware:
	// a second logout with a still-valid token must succeed rather than
	// bounce off the revocation check.
	g := e.Group("/v1/auth")
	g.POST("/login", h.Auth.Login)
	g.POST("/logout", h.Auth.Logout)

	// Everything below requires a valid, non-revoked access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret, revoked))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))

	auth.GET("/me", h.Auth.Me)

	// Account directory. Listing and creation are admin-only; reads and
	// writes on a single account allow the owner as well (enforced in
	// the handler).
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	auth.POST("/users", h.Users.Create, adminOnly)
	auth.GET("/users", h.Users.List, adminOnly)
	auth.GET("/users/:id", h.Users.GetByID)
	auth.PUT("/users/:id", h.Users.Update)
	auth.DELETE("/users/:id", h.Users.Delete)
	auth.GET("/users/email/:email", h.Users.GetByEmail)

	// Credential change workflow. Submission is owner-only with the
	// USER role; review and resolution are admin-only.
	auth.POST("/users/:id/password-change", h.Changes.Request, middleware.RequireRole(model.RoleUser))
	auth.GET("/users/:id/password-change/pending", h.Changes.PendingForUser, adminOnly)
	auth.PUT("/password-change-requests/:id", h.Changes.Resolve, adminOnly)
	auth.GET("/password-change-requests/pending", h.Changes.ListPending, adminOnly)

	// Push token registration for the authenticated account.
	auth.POST("/devices/register", h.Devices.Register)

	// Address book. Any authenticated caller may manage addresses.
	auth.POST("/addresses", h.Addresses.Create)
	auth.GET("/addresses/:id", h.Addresses.GetByID)
	auth.PUT("/addresses/:id", h.Addresses.Update)
	auth.DELETE("/addresses/:id", h.Addresses.Delete)
}
