package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type CatalogHandler struct {
	Catalog *service.CatalogService
}

// queryInt returns 0 for a missing or malformed value; the service applies defaults.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	page, err := h.Catalog.ListProducts(ctx, queryInt(c, "page"), queryInt(c, "size"))
	if err != nil {
		return fail(l, "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page, err := h.Catalog.SearchProducts(ctx, c.QueryParam("q"), queryInt(c, "page"), queryInt(c, "size"))
	if err != nil {
		return fail(l, "search_failed", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get")

	productID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	p, err := h.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	p, err := h.Catalog.CreateProduct(ctx, auth.IdentityFrom(c), req)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}
	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update")

	productID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	p, err := h.Catalog.UpdateProduct(ctx, auth.IdentityFrom(c), productID, req)
	if err != nil {
		return fail(l, "update_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete")

	productID, err := parseID(c, "id")
	if err != nil {
		return fail(l, "bad_id", err)
	}
	if err := h.Catalog.DeleteProduct(ctx, auth.IdentityFrom(c), productID); err != nil {
		return fail(l, "delete_product_failed", err)
	}
	l.Info("product_deleted", "product_id", productID)
	return c.JSON(http.StatusOK, transport.ResultOK)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.categories")

	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "bind_failed", badRequest("malformed body"))
	}
	cat, err := h.Catalog.CreateCategory(ctx, auth.IdentityFrom(c), req)
	if err != nil {
		return fail(l, "create_category_failed", err)
	}
	return c.JSON(http.StatusOK, cat)
}
