package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/models"
)

type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uint) error
	ListUsers(ctx context.Context) ([]models.User, error)
	// LockRegistrations serializes registrations until the surrounding transaction ends.
	LockRegistrations(ctx context.Context) error
}

type ProductStore interface {
	FindProductByID(ctx context.Context, id uint) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) ([]models.Product, int64, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error

	FindCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
}

type CartStore interface {
	CartItems(ctx context.Context, userID uint) ([]models.CartItem, error)
	LockCartItems(ctx context.Context, userID uint) ([]models.CartItem, error)
	FindCartItem(ctx context.Context, id uint) (*models.CartItem, error)
	AddToCart(ctx context.Context, item *models.CartItem) error
	SetCartQuantity(ctx context.Context, id uint, quantity int) error
	DeleteCartItem(ctx context.Context, id uint) error
	DeleteCartItems(ctx context.Context, userID uint, ids []uint) (int64, error)
	ClearCart(ctx context.Context, userID uint) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	FindOrderByID(ctx context.Context, id uint) (*models.Order, error)
	OrderCodeExists(ctx context.Context, code string) (bool, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	OrderItems(ctx context.Context, orderIDs []uint) (map[uint][]models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error
}

// Store is the unit-of-work boundary the services work against.
type Store interface {
	UserStore
	ProductStore
	CartStore
	OrderStore

	// Transaction runs fn against a Store bound to one database transaction.
	// A returned error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type GormRepo struct {
	DB *gorm.DB
}

var _ Store = (*GormRepo)(nil)

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) isPostgres() bool {
	return r.DB.Dialector.Name() == "postgres"
}
