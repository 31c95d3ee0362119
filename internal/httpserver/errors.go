package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/transport"
)

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func reasonForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if code >= 500 {
		return "internal"
	}
	return "error"
}

// httpError turns a domain error into the HTTP error returned to the client.
// Internal details stay in the log.
func httpError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	code, reason := classify(err)
	msg := err.Error()
	if code >= 500 {
		msg = http.StatusText(code)
	}
	return &echo.HTTPError{
		Code:     code,
		Message:  transport.ErrorResponse{Error: reason, Message: msg},
		Internal: err,
	}
}

func fail(l *slog.Logger, event string, err error) error {
	he := httpError(err)
	if he.Code >= 500 {
		l.Error(event, "status", he.Code, "error", err)
	} else {
		l.Warn(event, "status", he.Code, "error", err)
	}
	return he
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{service.ErrValidation}, args...)...)
}

// ErrorHandler renders every error as {"error": reason, "message": text}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := httpError(err)
	var body transport.ErrorResponse
	switch m := he.Message.(type) {
	case transport.ErrorResponse:
		body = m
	case map[string]string:
		body = transport.ErrorResponse{Error: m["error"], Message: m["message"]}
	case string:
		body = transport.ErrorResponse{Error: reasonForStatus(he.Code), Message: m}
	default:
		body = transport.ErrorResponse{Error: reasonForStatus(he.Code), Message: http.StatusText(he.Code)}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

func parseID(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, badRequest("%s must be a positive integer", name)
	}
	return uint(n), nil
}
