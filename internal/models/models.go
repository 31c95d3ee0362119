package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPaid      OrderStatus = "Paid"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipping  OrderStatus = "Shipping"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusShipping, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"not null"`
	Email        string    `gorm:"size:255"`
	FullName     string    `gorm:"size:255"`
	Role         string    `gorm:"size:16;not null;default:USER"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:255;not null;index"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description string
	Image       string
	CategoryID  *uint `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int  `gorm:"not null;default:1;check:quantity > 0"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	UserID          uint            `gorm:"not null;index"`
	Code            string          `gorm:"size:6;not null;uniqueIndex"`
	OrderDate       time.Time       `gorm:"not null;index"`
	Status          OrderStatus     `gorm:"size:16;not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingAddress string          `gorm:"not null"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}}
}
