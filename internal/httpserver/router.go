package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/metrics"
	loggingmw "github.com/Skotchmaster/webshop/internal/middleware/logging"
	"github.com/Skotchmaster/webshop/internal/ratelimit"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/tokens"
)

type Deps struct {
	Tokens *tokens.Service
	Guard  *auth.Guard

	Auth     *service.AuthService
	Users    *service.UserService
	Cart     *service.CartService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Catalog  *service.CatalogService

	// Optional.
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
	Ready   func(ctx context.Context) error
}

type Options struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// New builds the echo instance with the middleware chain and all routes.
func New(d *Deps, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.Recover())
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}
	if opts.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: opts.RequestTimeout}))
	}
	e.Use(auth.Authenticate(d.Tokens))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	ah := &AuthHandler{Auth: d.Auth}
	uh := &UserHandler{Guard: d.Guard, Users: d.Users}
	ch := &CartHandler{Cart: d.Cart}
	oh := &OrderHandler{Checkout: d.Checkout, Orders: d.Orders}
	ph := &CatalogHandler{Catalog: d.Catalog}

	api := e.Group("/api")

	authg := api.Group("/auth", ratelimit.Middleware(d.Limiter, "auth"))
	authg.POST("/register", ah.Register)
	authg.POST("/login", ah.Login)

	api.GET("/products", ph.ListProducts)
	api.GET("/products/search", ph.SearchProducts)
	api.GET("/products/:id", ph.GetProduct)
	api.GET("/categories", ph.ListCategories)
	api.POST("/products", ph.CreateProduct, d.Guard.RequireAdmin)
	api.PUT("/products/:id", ph.UpdateProduct, d.Guard.RequireAdmin)
	api.DELETE("/products/:id", ph.DeleteProduct, d.Guard.RequireAdmin)
	api.POST("/categories", ph.CreateCategory, d.Guard.RequireAdmin)

	cart := api.Group("/cart", d.Guard.RequireAuth)
	cart.GET("", ch.GetCart)
	cart.POST("", ch.AddToCart)
	cart.PUT("/:id", ch.UpdateItem)
	cart.DELETE("/:id", ch.RemoveItem)

	orders := api.Group("/orders", d.Guard.RequireAuth)
	orders.POST("", oh.PlaceOrder)
	orders.GET("", oh.ListOrders)
	orders.GET("/:id", oh.GetOrder)
	orders.PUT("/:id/status", oh.UpdateStatus, d.Guard.RequireAdmin)

	users := api.Group("/users")
	users.GET("/profile", uh.Profile)
	users.PUT("/profile", uh.UpdateProfile)
	users.PUT("/:id/password", uh.ChangePassword)
	users.GET("", uh.List, d.Guard.RequireAdmin)
	users.PUT("/:id", uh.Update, d.Guard.RequireAdmin)
	users.DELETE("/:id", uh.Delete, d.Guard.RequireAdmin)
}
