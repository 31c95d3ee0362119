package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/models"
)

const identityKey = "auth.identity"

// Identity is the caller as currently stored, resolved once per request.
// Authorization decisions use Identity, never the token's role claim.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

func (i *Identity) HasRole(role string) bool {
	return i != nil && i.Role == role
}

func (i *Identity) IsAdmin() bool {
	return i.HasRole(models.RoleAdmin)
}

// CheckOwner allows the owner of a resource and administrators.
func CheckOwner(id *Identity, ownerID uint) error {
	if id == nil {
		return ErrUnauthorized
	}
	if id.UserID == ownerID || id.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

type UserLookup interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type Guard struct {
	Users UserLookup
}

func NewGuard(users UserLookup) *Guard {
	return &Guard{Users: users}
}

// Identify resolves the request's principal against the user store.
func (g *Guard) Identify(c echo.Context) (*Identity, error) {
	if id, ok := c.Get(identityKey).(*Identity); ok && id != nil {
		return id, nil
	}

	p := PrincipalFrom(c)
	if p == nil {
		return nil, ErrUnauthorized
	}

	u, err := g.Users.FindUserByUsername(c.Request().Context(), p.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q no longer exists", ErrUnauthorized, p.Username)
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	id := &Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
	c.Set(identityKey, id)
	return id, nil
}

func (g *Guard) RequireRole(c echo.Context, role string) (*Identity, error) {
	id, err := g.Identify(c)
	if err != nil {
		return nil, err
	}
	if !id.HasRole(role) {
		return nil, fmt.Errorf("%w: %s role required", ErrForbidden, role)
	}
	return id, nil
}

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := g.Identify(c); err != nil {
			return err
		}
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := g.RequireRole(c, models.RoleAdmin); err != nil {
			return err
		}
		return next(c)
	}
}

// IdentityFrom returns the identity resolved earlier in the request, if any.
func IdentityFrom(c echo.Context) *Identity {
	id, _ := c.Get(identityKey).(*Identity)
	return id
}
