package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/webshop/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserView(u models.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
}

type AdminUpdateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ProductSummary struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

func NewProductSummary(p models.Product) *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
}

type ProductView struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	CategoryID  *uint           `json:"categoryId,omitempty"`
}

func NewProductView(p models.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		CategoryID:  p.CategoryID,
	}
}

type ProductPage struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Size     int           `json:"size"`
	Products []ProductView `json:"products"`
}

type ProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	CategoryID  *uint           `json:"categoryId"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CartItemView struct {
	ID       uint            `json:"id"`
	Quantity int             `json:"quantity"`
	Product  *ProductSummary `json:"product"`
}

type AddToCartRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderItemView struct {
	ID        uint            `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	// Product is the live catalog entry; nil once the product is deleted.
	Product *ProductSummary `json:"product"`
}

type OrderView struct {
	ID              uint            `json:"id"`
	UserID          uint            `json:"userId"`
	Code            string          `json:"code"`
	OrderDate       time.Time       `json:"orderDate"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []OrderItemView `json:"items"`
}

func NewOrderView(o models.Order, items []models.OrderItem, products map[uint]models.Product) OrderView {
	v := OrderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Code:            o.Code,
		OrderDate:       o.OrderDate,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Items:           make([]OrderItemView, 0, len(items)),
	}
	for _, it := range items {
		iv := OrderItemView{ID: it.ID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		if p, ok := products[it.ProductID]; ok {
			iv.Product = NewProductSummary(p)
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ResultResponse is the body of successful calls that return no resource.
type ResultResponse struct {
	Result string `json:"result"`
}

var ResultOK = ResultResponse{Result: "ok"}
