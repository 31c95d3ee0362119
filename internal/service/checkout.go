package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/events"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/metrics"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/transport"
)

const (
	orderCodeLen      = 6
	orderCodeAttempts = 5
)

type CheckoutObserver interface {
	ObserveCheckout(result string, amount float64)
}

type CheckoutService struct {
	Repo     repo.Store
	Events   events.Publisher
	Observer CheckoutObserver

	// Now and NewCode default to the wall clock and a uuid-derived code.
	Now     func() time.Time
	NewCode func() string
}

func newOrderCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:orderCodeLen])
}

// Checkout turns the caller's cart into a paid order. Either the order with all
// its items is stored and the cart lines are gone, or nothing changed.
func (s *CheckoutService) Checkout(ctx context.Context, id *auth.Identity, shippingAddress string) (*transport.OrderView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	addr := strings.TrimSpace(shippingAddress)
	if addr == "" {
		return nil, fmt.Errorf("%w: shipping address is required", ErrValidation)
	}

	var (
		order    models.Order
		products map[uint]models.Product
	)
	err := s.Repo.Transaction(ctx, func(tx repo.Store) error {
		cart, err := tx.LockCartItems(ctx, id.UserID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		productIDs := make([]uint, 0, len(cart))
		cartIDs := make([]uint, 0, len(cart))
		for _, ci := range cart {
			productIDs = append(productIDs, ci.ProductID)
			cartIDs = append(cartIDs, ci.ID)
		}
		products, err = tx.FindProductsByIDs(ctx, productIDs)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart))
		for _, ci := range cart {
			p, ok := products[ci.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d is no longer available", ErrValidation, ci.ProductID)
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Quantity:  ci.Quantity,
				UnitPrice: p.Price,
			})
		}

		code, err := s.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		order = models.Order{
			UserID:          id.UserID,
			Code:            code,
			OrderDate:       s.now().UTC(),
			Status:          models.StatusPaid,
			TotalAmount:     total,
			ShippingAddress: addr,
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		deleted, err := tx.DeleteCartItems(ctx, id.UserID, cartIDs)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if deleted != int64(len(cartIDs)) {
			return fmt.Errorf("%w: cart changed during checkout", ErrConflict)
		}
		return nil
	})
	if err != nil {
		s.observe(checkoutResult(err), 0)
		return nil, err
	}

	amount, _ := order.TotalAmount.Float64()
	s.observe(metrics.CheckoutOK, amount)
	logging.FromContext(ctx).Info("order_placed", "order_id", order.ID, "code", order.Code,
		"user_id", id.UserID, "total", order.TotalAmount.StringFixed(2))

	publish(ctx, s.Events, events.TopicOrderEvents, order.Code, events.OrderCreated{
		Type:        "order_created",
		OrderID:     order.ID,
		Code:        order.Code,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Items:       len(order.Items),
		At:          order.OrderDate,
	})

	v := transport.NewOrderView(order, order.Items, products)
	return &v, nil
}

func (s *CheckoutService) uniqueCode(ctx context.Context, tx repo.Store) (string, error) {
	gen := s.NewCode
	if gen == nil {
		gen = newOrderCode
	}
	for i := 0; i < orderCodeAttempts; i++ {
		code := gen()
		exists, err := tx.OrderCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique order code", ErrConflict)
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CheckoutService) observe(result string, amount float64) {
	if s.Observer != nil {
		s.Observer.ObserveCheckout(result, amount)
	}
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return metrics.CheckoutEmpty
	case errors.Is(err, ErrConflict):
		return metrics.CheckoutConflict
	default:
		return metrics.CheckoutFailed
	}
}
