package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type OrderHandler struct {
	Checkout *service.CheckoutService
	Orders   *service.OrderService
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	order, err := h.Checkout.Checkout(ctx, auth.IdentityFrom(c), req.ShippingAddress)
	if err != nil {
		return fail(l, "checkout_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders accepts optional startDate and endDate query parameters (YYYY-MM-DD).
func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Orders.ListOrders(ctx, auth.IdentityFrom(c), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return fail(l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	orderID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	order, err := h.Orders.GetOrder(ctx, auth.IdentityFrom(c), orderID)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	orderID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	order, err := h.Orders.UpdateStatus(ctx, auth.IdentityFrom(c), orderID, req.Status)
	if err != nil {
		return fail(l, "update_status_failed", err)
	}
	l.Info("order_status_changed", "order_id", orderID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
