package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/logging"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes one "request completed" line per request. Handler errors are rendered
// here, so outer middlewares always see the final status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path(), "remote_ip", c.RealIP())
			if rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			res := c.Response()
			attrs := []any{
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", res.Size,
			}
			// set once the guard has resolved the caller
			if id := auth.IdentityFrom(c); id != nil {
				attrs = append(attrs, "user_id", id.UserID)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			lvl := slog.LevelInfo
			switch {
			case res.Status >= 500:
				lvl = slog.LevelError
			case res.Status >= 400:
				lvl = slog.LevelWarn
			}
			l.Log(req.Context(), lvl, "request completed", attrs...)
			return nil
		}
	}
}
