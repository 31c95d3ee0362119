package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/db"
	"github.com/Skotchmaster/webshop/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func seedProduct(t *testing.T, r *GormRepo, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}

func TestAddToCart_IncrementsExistingRow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Pen", "1.50")

	first := models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, &first))
	second := models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, &second))

	items, err := r.CartItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
}

func TestDeleteCartItems_CountsOnlyOwnRows(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p1 := seedProduct(t, r, "A", "1")
	p2 := seedProduct(t, r, "B", "2")

	mine := models.CartItem{UserID: 1, ProductID: p1.ID, Quantity: 1}
	other := models.CartItem{UserID: 2, ProductID: p2.ID, Quantity: 1}
	require.NoError(t, r.AddToCart(ctx, &mine))
	require.NoError(t, r.AddToCart(ctx, &other))

	n, err := r.DeleteCartItems(ctx, 1, []uint{mine.ID, other.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := r.CartItems(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestSetCartQuantity_Missing(t *testing.T) {
	r := newTestRepo(t)
	err := r.SetCartQuantity(context.Background(), 99, 3)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteCartItem(context.Background(), 99), gorm.ErrRecordNotFound)
}

func TestListOrders_FilterAndOrdering(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	day := func(d, h int) time.Time { return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC) }
	mk := func(user uint, code string, at time.Time) {
		o := models.Order{UserID: user, Code: code, OrderDate: at, Status: models.StatusPaid,
			TotalAmount: decimal.NewFromInt(1), ShippingAddress: "addr"}
		require.NoError(t, r.CreateOrder(ctx, &o))
	}
	mk(1, "AAAAAA", day(1, 9))
	mk(1, "BBBBBB", day(3, 23))
	mk(2, "CCCCCC", day(2, 12))

	all, err := r.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"BBBBBB", "CCCCCC", "AAAAAA"}, codes(all))

	uid := uint(1)
	from := day(2, 0)
	own, err := r.ListOrders(ctx, OrderFilter{UserID: &uid, From: &from})
	require.NoError(t, err)
	assert.Equal(t, []string{"BBBBBB"}, codes(own))

	to := day(2, 23)
	upTo, err := r.ListOrders(ctx, OrderFilter{To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"CCCCCC", "AAAAAA"}, codes(upTo))
}

func codes(orders []models.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Code)
	}
	return out
}

func TestCreateOrder_WithItemsAndLookup(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Lamp", "12.00")

	o := models.Order{UserID: 1, Code: "XYZ123", OrderDate: time.Now().UTC(), Status: models.StatusPaid,
		TotalAmount: decimal.RequireFromString("24.00"), ShippingAddress: "Main st 1",
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}}}
	require.NoError(t, r.CreateOrder(ctx, &o))
	require.NotZero(t, o.Items[0].ID)
	assert.Equal(t, o.ID, o.Items[0].OrderID)

	exists, err := r.OrderCodeExists(ctx, "XYZ123")
	require.NoError(t, err)
	assert.True(t, exists)

	items, err := r.OrderItems(ctx, []uint{o.ID})
	require.NoError(t, err)
	require.Len(t, items[o.ID], 1)
	assert.True(t, items[o.ID][0].UnitPrice.Equal(decimal.RequireFromString("12")))

	require.NoError(t, r.UpdateOrderStatus(ctx, o.ID, models.StatusShipping))
	got, err := r.FindOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipping, got.Status)
	assert.ErrorIs(t, r.UpdateOrderStatus(ctx, o.ID+100, models.StatusShipping), gorm.ErrRecordNotFound)
}

func TestTransaction_RollsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateUser(ctx, &models.User{Username: "ghost", PasswordHash: "x", Role: models.RoleUser}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := r.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchProducts_LikeFallback(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Red Mug", "3")
	seedProduct(t, r, "Blue mug", "4")
	seedProduct(t, r, "Plate", "5")
	seedProduct(t, r, "100% cotton", "6")

	items, total, err := r.SearchProducts(ctx, "MUG", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Blue mug", items[0].Name)

	items, total, err = r.SearchProducts(ctx, "0%", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "100% cotton", items[0].Name)
}
