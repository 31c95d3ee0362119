package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/events"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/transport"
)

const dateLayout = "2006-01-02"

type OrderService struct {
	Repo   repo.Store
	Events events.Publisher
}

// ListOrders returns the caller's orders, or every order for administrators,
// newest first. startDate and endDate are optional yyyy-MM-dd bounds in UTC;
// the end day is included in full.
func (s *OrderService) ListOrders(ctx context.Context, id *auth.Identity, startDate, endDate string) ([]transport.OrderView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}

	var f repo.OrderFilter
	if !id.IsAdmin() {
		uid := id.UserID
		f.UserID = &uid
	}
	if v := strings.TrimSpace(startDate); v != "" {
		from, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: startDate must be yyyy-MM-dd", ErrValidation)
		}
		f.From = &from
	}
	if v := strings.TrimSpace(endDate); v != "" {
		end, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: endDate must be yyyy-MM-dd", ErrValidation)
		}
		to := end.Add(24*time.Hour - time.Millisecond)
		f.To = &to
	}

	orders, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders)
}

func (s *OrderService) GetOrder(ctx context.Context, id *auth.Identity, orderID uint) (*transport.OrderView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	o, err := s.Repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if err := auth.CheckOwner(id, o.UserID); err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Order{*o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id *auth.Identity, orderID uint, status string) (*transport.OrderView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	st := models.OrderStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, status)
	}

	if err := s.Repo.UpdateOrderStatus(ctx, orderID, st); err != nil {
		return nil, notFound(err, "order")
	}

	publish(ctx, s.Events, events.TopicOrderEvents, fmt.Sprint(orderID), events.OrderStatusChanged{
		Type:    "order_status_changed",
		OrderID: orderID,
		Status:  string(st),
		At:      time.Now().UTC(),
	})

	return s.GetOrder(ctx, id, orderID)
}

// views loads items and the current product rows for a batch of orders.
func (s *OrderService) views(ctx context.Context, orders []models.Order) ([]transport.OrderView, error) {
	out := make([]transport.OrderView, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	items, err := s.Repo.OrderItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{})
	productIDs := make([]uint, 0)
	for _, its := range items {
		for _, it := range its {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				productIDs = append(productIDs, it.ProductID)
			}
		}
	}
	products, err := s.Repo.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		out = append(out, transport.NewOrderView(o, items[o.ID], products))
	}
	return out, nil
}
