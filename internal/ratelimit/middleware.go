package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/logging"
)

// Middleware limits requests per client IP under the given scope.
// Limiter failures let the request through.
func Middleware(l Limiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if l == nil {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			res, err := l.Allow(ctx, scope+":"+c.RealIP())
			if err != nil {
				logging.FromContext(ctx).Warn("rate_limit_unavailable", "scope", scope, "error", err)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, map[string]string{
					"error":   "rate_limited",
					"message": "too many requests, retry later",
				})
			}
			return next(c)
		}
	}
}
