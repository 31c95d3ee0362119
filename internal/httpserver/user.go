package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type UserHandler struct {
	Guard *auth.Guard
	Users *service.UserService
}

func (h *UserHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.profile")

	id, err := h.Guard.Identify(c)
	if err != nil {
		return fail(l, "unauthenticated", err)
	}
	u, err := h.Users.Profile(ctx, id)
	if err != nil {
		return fail(l, "profile_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_profile")

	id, err := h.Guard.Identify(c)
	if err != nil {
		return fail(l, "unauthenticated", err)
	}
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	u, err := h.Users.UpdateProfile(ctx, id, req)
	if err != nil {
		return fail(l, "update_profile_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_password")

	id, err := h.Guard.Identify(c)
	if err != nil {
		return fail(l, "unauthenticated", err)
	}
	target, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	if err := h.Users.ChangePassword(ctx, id, target, req); err != nil {
		return fail(l, "change_password_failed", err)
	}
	l.Info("password_changed", "user_id", target, "by", id.UserID)
	return c.JSON(http.StatusOK, transport.ResultOK)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Users.List(ctx, auth.IdentityFrom(c))
	if err != nil {
		return fail(l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.admin_update")

	target, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	var req transport.AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	u, err := h.Users.AdminUpdate(ctx, auth.IdentityFrom(c), target, req)
	if err != nil {
		return fail(l, "admin_update_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	target, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	if err := h.Users.Delete(ctx, auth.IdentityFrom(c), target); err != nil {
		return fail(l, "delete_user_failed", err)
	}
	l.Info("user_deleted", "user_id", target)
	return c.JSON(http.StatusOK, transport.ResultOK)
}
