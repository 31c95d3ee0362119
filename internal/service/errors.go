package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/events"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409

	ErrEmptyCart = fmt.Errorf("%w: cart is empty", ErrValidation)
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func requireAdmin(id *auth.Identity) error {
	if id == nil {
		return auth.ErrUnauthorized
	}
	if !id.HasRole(models.RoleAdmin) {
		return fmt.Errorf("%w: %s role required", auth.ErrForbidden, models.RoleAdmin)
	}
	return nil
}

// publish sends an event after the fact; delivery problems are logged, not returned.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev any) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", topic, "key", key, "error", err)
	}
}
