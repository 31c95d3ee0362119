package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/db"
	"github.com/Skotchmaster/webshop/internal/models"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/tokens"
	"github.com/Skotchmaster/webshop/internal/transport"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, ev any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: ev})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type testEnv struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Service
	Events   *recordingPublisher
	Auth     *AuthService
	Users    *UserService
	Cart     *CartService
	Checkout *CheckoutService
	Orders   *OrderService
	Catalog  *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	ts := tokens.NewService(testSecret)
	pub := &recordingPublisher{}
	return &testEnv{
		Repo:     r,
		Tokens:   ts,
		Events:   pub,
		Auth:     &AuthService{Repo: r, Tokens: ts, Events: pub},
		Users:    &UserService{Repo: r},
		Cart:     &CartService{Repo: r},
		Checkout: &CheckoutService{Repo: r, Events: pub},
		Orders:   &OrderService{Repo: r, Events: pub},
		Catalog:  &CatalogService{Repo: r},
	}
}

// register creates a user through the auth service and returns its identity.
func (e *testEnv) register(t *testing.T, username string) *auth.Identity {
	t.Helper()
	ctx := context.Background()
	_, err := e.Auth.Register(ctx, transport.RegisterRequest{Username: username, Password: "pw-" + username})
	require.NoError(t, err)
	u, err := e.Repo.FindUserByUsername(ctx, username)
	require.NoError(t, err)
	return &auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *testEnv) product(t *testing.T, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Image: name + ".png"}
	require.NoError(t, e.Repo.CreateProduct(context.Background(), &p))
	return p
}

func (e *testEnv) addToCart(t *testing.T, id *auth.Identity, productID uint, qty int) {
	t.Helper()
	_, err := e.Cart.AddToCart(context.Background(), id, transport.AddToCartRequest{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}
