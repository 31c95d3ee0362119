package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/transport"
)

type CartService struct {
	Repo repo.Store
}

func (s *CartService) GetCart(ctx context.Context, id *auth.Identity) ([]transport.CartItemView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	items, err := s.Repo.CartItems(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CartItemView, 0, len(items))
	for _, it := range items {
		out = append(out, cartView(it, products))
	}
	return out, nil
}

func cartView(it models.CartItem, products map[uint]models.Product) transport.CartItemView {
	v := transport.CartItemView{ID: it.ID, Quantity: it.Quantity}
	if p, ok := products[it.ProductID]; ok {
		v.Product = transport.NewProductSummary(p)
	}
	return v
}

// AddToCart adds quantity to the caller's line for the product, creating it if needed.
// A zero quantity means one.
func (s *CartService) AddToCart(ctx context.Context, id *auth.Identity, req transport.AddToCartRequest) (*transport.CartItemView, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("%w: productId is required", ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := s.Repo.FindProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFound(err, "product")
	}

	item := models.CartItem{UserID: id.UserID, ProductID: p.ID, Quantity: req.Quantity}
	err = s.Repo.AddToCart(ctx, &item)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost an insert race with a parallel add; the row exists now
		item = models.CartItem{UserID: id.UserID, ProductID: p.ID, Quantity: req.Quantity}
		err = s.Repo.AddToCart(ctx, &item)
	}
	if err != nil {
		return nil, err
	}

	v := cartView(item, map[uint]models.Product{p.ID: *p})
	return &v, nil
}

// UpdateQuantity sets the line's quantity. Zero or less removes the line and returns nil.
func (s *CartService) UpdateQuantity(ctx context.Context, id *auth.Identity, itemID uint, quantity int) (*transport.CartItemView, error) {
	item, err := s.ownedItem(ctx, id, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.Repo.DeleteCartItem(ctx, item.ID); err != nil {
			return nil, notFound(err, "cart item")
		}
		return nil, nil
	}

	if err := s.Repo.SetCartQuantity(ctx, item.ID, quantity); err != nil {
		return nil, notFound(err, "cart item")
	}
	item.Quantity = quantity

	products, err := s.Repo.FindProductsByIDs(ctx, []uint{item.ProductID})
	if err != nil {
		return nil, err
	}
	v := cartView(*item, products)
	return &v, nil
}

func (s *CartService) RemoveItem(ctx context.Context, id *auth.Identity, itemID uint) error {
	item, err := s.ownedItem(ctx, id, itemID)
	if err != nil {
		return err
	}
	return notFound(s.Repo.DeleteCartItem(ctx, item.ID), "cart item")
}

func (s *CartService) ownedItem(ctx context.Context, id *auth.Identity, itemID uint) (*models.CartItem, error) {
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	item, err := s.Repo.FindCartItem(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	if err := auth.CheckOwner(id, item.UserID); err != nil {
		return nil, err
	}
	return item, nil
}
