package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/service"
)

// UserHandler bundles dependencies for account directory endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(u *service.UserService) *UserHandler { return &UserHandler{Users: u} }

// ----- DTOs -----

const dateLayout = "2006-01-02"

type addressReq struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code"`
	AddressType   string `json:"address_type"`
	Default       bool   `json:"default"`
}

type createUserReq struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Gender      string      `json:"gender"`
	DateOfBirth string      `json:"date_of_birth"`
	PhoneNumber string      `json:"phone_number"`
	Role        string      `json:"role"`
	Address     *addressReq `json:"address"`
}

type updateUserReq struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Gender      string      `json:"gender"`
	DateOfBirth string      `json:"date_of_birth"`
	PhoneNumber string      `json:"phone_number"`
	Role        string      `json:"role"`
	Address     *addressReq `json:"address"`
}

// userResp is the serialized account shape. The credential hash never
// appears here.
type userResp struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Gender      string  `json:"gender"`
	DateOfBirth string  `json:"date_of_birth"`
	PhoneNumber string  `json:"phone_number"`
	Role        string  `json:"role"`
	AddressID   *string `json:"address_id,omitempty"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth.Format(dateLayout),
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		AddressID:   u.AddressID,
	}
}

func toAddress(a *addressReq) *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		StreetAddress: a.StreetAddress,
		City:          a.City,
		State:         a.State,
		Country:       a.Country,
		PostalCode:    a.PostalCode,
		AddressType:   a.AddressType,
		Default:       a.Default,
	}
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleUser
}

// ownerOrAdmin allows admins through unconditionally and users only
// when acting on their own account.
func ownerOrAdmin(c echo.Context, targetID string) bool {
	return callerRole(c) == model.RoleAdmin || callerID(c) == targetID
}

// Create registers a new account (ADMIN only). A failed welcome
// notification is reported as a warning alongside the created user,
// never as an error.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name/email/password required"})
	}
	if !validRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or USER"})
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_of_birth must be YYYY-MM-DD"})
	}

	u := model.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Gender:      req.Gender,
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	warn, err := h.Users.Create(ctx, &u, toAddress(req.Address), req.Password, c.Request().Header.Get("Authorization"))
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{"user": toUserResp(u)}
	if !warn.None() {
		resp["warning"] = string(warn)
	}
	return c.JSON(http.StatusCreated, resp)
}

// List returns a page of accounts (ADMIN only).
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size < 1 {
		size = 20
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, total, err := h.Users.List(ctx, page, size)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]userResp, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"page":  page,
		"size":  size,
		"total": total,
	})
}

// GetByID returns one account. Users can only read themselves.
func (h *UserHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	if !ownerOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// GetByEmail returns one account looked up by email. Users can only
// look up their own record.
func (h *UserHandler) GetByEmail(c echo.Context) error {
	email := c.Param("email")
	if callerRole(c) != model.RoleAdmin {
		if v, _ := c.Get("email").(string); v != email {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update replaces the mutable profile fields of an account. The
// credential is never changed here.
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if !ownerOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !validRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or USER"})
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_of_birth must be YYYY-MM-DD"})
	}

	in := model.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       strings.TrimSpace(req.Email),
		Gender:      req.Gender,
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, id, in, toAddress(req.Address))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete removes an account with its owned address and device
// registrations. Deletion always wins over a failed notification; the
// warning rides along on the success body.
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if !ownerOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	warn, err := h.Users.Delete(ctx, id, c.Request().Header.Get("Authorization"))
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{"success": true}
	if !warn.None() {
		resp["warning"] = string(warn)
	}
	return c.JSON(http.StatusOK, resp)
}
