package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/transport"
)

func TestCartService_AddIncrements(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "root")
	alice := env.register(t, "alice")
	p := env.product(t, "Pen", "2.00")

	env.addToCart(t, alice, p.ID, 2)
	env.addToCart(t, alice, p.ID, 3)

	items, err := env.Cart.GetCart(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Pen", items[0].Product.Name)
}

func TestCartService_AddValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	p := env.product(t, "Pen", "2.00")

	_, err := env.Cart.AddToCart(ctx, nil, transport.AddToCartRequest{ProductID: p.ID})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	_, err = env.Cart.AddToCart(ctx, alice, transport.AddToCartRequest{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.Cart.AddToCart(ctx, alice, transport.AddToCartRequest{ProductID: p.ID, Quantity: -2})
	assert.ErrorIs(t, err, ErrValidation)

	v, err := env.Cart.AddToCart(ctx, alice, transport.AddToCartRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Quantity)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		quantity  int
		wantGone  bool
		wantCount int
	}{
		{name: "raise", quantity: 7, wantCount: 7},
		{name: "zero deletes", quantity: 0, wantGone: true},
		{name: "negative deletes", quantity: -3, wantGone: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			ctx := context.Background()
			alice := env.register(t, "alice")
			p := env.product(t, "Cup", "4.00")
			env.addToCart(t, alice, p.ID, 2)

			items, err := env.Cart.GetCart(ctx, alice)
			require.NoError(t, err)
			require.Len(t, items, 1)

			v, err := env.Cart.UpdateQuantity(ctx, alice, items[0].ID, tt.quantity)
			require.NoError(t, err)

			after, err := env.Cart.GetCart(ctx, alice)
			require.NoError(t, err)
			if tt.wantGone {
				assert.Nil(t, v)
				assert.Empty(t, after)
				return
			}
			require.Len(t, after, 1)
			assert.Equal(t, tt.wantCount, after[0].Quantity)
			assert.Equal(t, tt.wantCount, v.Quantity)
		})
	}
}

func TestCartService_Ownership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "root")
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	p := env.product(t, "Cup", "4.00")
	env.addToCart(t, alice, p.ID, 1)

	items, err := env.Cart.GetCart(ctx, alice)
	require.NoError(t, err)
	itemID := items[0].ID

	_, err = env.Cart.UpdateQuantity(ctx, bob, itemID, 5)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, env.Cart.RemoveItem(ctx, bob, itemID), auth.ErrForbidden)

	bobCart, err := env.Cart.GetCart(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobCart)

	assert.ErrorIs(t, env.Cart.RemoveItem(ctx, alice, 12345), ErrNotFound)

	require.NoError(t, env.Cart.RemoveItem(ctx, admin, itemID))
	items, err = env.Cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, items)
}
