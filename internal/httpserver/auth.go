package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}

	resp, err := h.Auth.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err)
	}
	l.Info("user_registered", "username", resp.Username, "role", resp.Role)
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}

	resp, err := h.Auth.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err)
	}
	return c.JSON(http.StatusOK, resp)
}
