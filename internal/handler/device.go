package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/service"
)

// DeviceHandler registers push notification tokens for the
// authenticated account.
type DeviceHandler struct {
	Users *service.UserService
}

func NewDeviceHandler(u *service.UserService) *DeviceHandler { return &DeviceHandler{Users: u} }

type registerDeviceReq struct {
	Token string `json:"token"`
}

// Register associates the posted push token with the caller's account.
// Registering a token that is already known is a no-op success.
func (h *DeviceHandler) Register(c echo.Context) error {
	var req registerDeviceReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	email, _ := c.Get("email").(string)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.RegisterDevice(ctx, strings.TrimSpace(req.Token), email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"registered": true})
}
