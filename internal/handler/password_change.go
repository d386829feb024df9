package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/service"
)

// PasswordChangeHandler exposes the credential change workflow:
// submission by the account owner, resolution by an admin, and the
// pending review listings.
type PasswordChangeHandler struct {
	Changes *service.PasswordChangeService
}

func NewPasswordChangeHandler(s *service.PasswordChangeService) *PasswordChangeHandler {
	return &PasswordChangeHandler{Changes: s}
}

// ----- DTOs -----

type changeRequestReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type approvalReq struct {
	Approved bool `json:"approved"`
}

// changeResp never includes the captured credential hash.
type changeResp struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	AdminID   *string    `json:"admin_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toChangeResp(r model.PasswordChangeRequest) changeResp {
	return changeResp{
		ID:        r.ID,
		UserID:    r.UserID,
		Status:    r.Status,
		AdminID:   r.AdminID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type pendingItemResp struct {
	changeResp
	UserFirstName string `json:"user_first_name"`
	UserLastName  string `json:"user_last_name"`
	UserEmail     string `json:"user_email"`
}

// Request submits a password change for the account in the path. Only
// the account owner may submit; the current password re-authenticates
// the caller.
func (h *PasswordChangeHandler) Request(c echo.Context) error {
	id := c.Param("id")
	if callerID(c) != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req changeRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "old_password/new_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, warn, err := h.Changes.Request(ctx, id, req.OldPassword, req.NewPassword, c.Request().Header.Get("Authorization"))
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{"request": toChangeResp(created)}
	if !warn.None() {
		resp["warning"] = string(warn)
	}
	return c.JSON(http.StatusAccepted, resp)
}

// Resolve applies the admin decision in the body to the request in the
// path. The acting admin is the authenticated caller.
func (h *PasswordChangeHandler) Resolve(c echo.Context) error {
	var req approvalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resolved, warn, err := h.Changes.Resolve(ctx, c.Param("id"), callerID(c), req.Approved, c.Request().Header.Get("Authorization"))
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{"request": toChangeResp(resolved)}
	if !warn.None() {
		resp["warning"] = string(warn)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListPending returns all PENDING requests enriched with requester
// identity for admin review.
func (h *PasswordChangeHandler) ListPending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Changes.ListPending(ctx)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]pendingItemResp, 0, len(views))
	for _, v := range views {
		items = append(items, pendingItemResp{
			changeResp:    toChangeResp(v.Request),
			UserFirstName: v.UserFirstName,
			UserLastName:  v.UserLastName,
			UserEmail:     v.UserEmail,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// PendingForUser returns the single PENDING request for an account, or
// an empty body with 404 when there is none.
func (h *PasswordChangeHandler) PendingForUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	req, ok, err := h.Changes.PendingForUser(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending request"})
	}
	return c.JSON(http.StatusOK, toChangeResp(req))
}
