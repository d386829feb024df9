package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/service"
)

// AddressHandler exposes CRUD on addresses. Addresses created here are
// standalone until an account update attaches them.
type AddressHandler struct {
	Users *service.UserService
}

func NewAddressHandler(u *service.UserService) *AddressHandler { return &AddressHandler{Users: u} }

type addressResp struct {
	ID            string `json:"id"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code"`
	AddressType   string `json:"address_type"`
	Default       bool   `json:"default"`
}

func toAddressResp(a model.Address) addressResp {
	return addressResp{
		ID:            a.ID,
		StreetAddress: a.StreetAddress,
		City:          a.City,
		State:         a.State,
		Country:       a.Country,
		PostalCode:    a.PostalCode,
		AddressType:   a.AddressType,
		Default:       a.Default,
	}
}

// Create stores a new address.
func (h *AddressHandler) Create(c echo.Context) error {
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StreetAddress == "" || req.City == "" || req.Country == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "street_address/city/country required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := toAddress(&req)
	if err := h.Users.CreateAddress(ctx, a); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toAddressResp(*a))
}

// GetByID fetches one address.
func (h *AddressHandler) GetByID(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Users.GetAddress(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAddressResp(a))
}

// Update replaces an address's fields.
func (h *AddressHandler) Update(c echo.Context) error {
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Users.UpdateAddress(ctx, c.Param("id"), *toAddress(&req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAddressResp(a))
}

// Delete removes an address.
func (h *AddressHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.DeleteAddress(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
