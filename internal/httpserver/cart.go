package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type CartHandler struct {
	Cart *service.CartService
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	items, err := h.Cart.GetCart(ctx, auth.IdentityFrom(c))
	if err != nil {
		return fail(l, "get_cart_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	item, err := h.Cart.AddToCart(ctx, auth.IdentityFrom(c), req)
	if err != nil {
		return fail(l, "add_to_cart_failed", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	itemID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	item, err := h.Cart.UpdateQuantity(ctx, auth.IdentityFrom(c), itemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_failed", err)
	}
	// non-positive quantities remove the line
	if item == nil {
		return c.JSON(http.StatusOK, transport.ResultOK)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	itemID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	if err := h.Cart.RemoveItem(ctx, auth.IdentityFrom(c), itemID); err != nil {
		return fail(l, "remove_cart_item_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ResultOK)
}
