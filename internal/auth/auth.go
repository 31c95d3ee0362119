package auth

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/webshop/internal/tokens"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const claimsKey = "auth.claims"

// Principal is what a valid bearer token proves about the caller.
// Role is the role at issue time and is only a hint for clients.
type Principal struct {
	Username string
	Role     string
	UserID   uint
}

func (p *Principal) HasRole(role string) bool {
	return p != nil && p.Role == role
}

// Authenticate attaches the token's claims to the request when the
// Authorization header carries a valid bearer token. Requests without one,
// or with a bad one, continue unauthenticated.
func Authenticate(ts *tokens.Service) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return ts.Validate(raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// PrincipalFrom returns the authenticated principal or nil.
func PrincipalFrom(c echo.Context) *Principal {
	claims, ok := c.Get(claimsKey).(*tokens.Claims)
	if !ok || claims == nil {
		return nil
	}
	return &Principal{
		Username: claims.Subject,
		Role:     claims.Role,
		UserID:   claims.UserID,
	}
}
