package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

type Order struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	OrderNumber string        `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      *uint         `gorm:"index" json:"user_id,omitempty"` // nil for guest checkout
	FullName    string        `gorm:"not null" json:"full_name"`
	Phone       string        `gorm:"not null" json:"phone"`
	City        string        `gorm:"not null" json:"city"`
	Address     string        `gorm:"type:text;not null" json:"address"`
	Note        string        `gorm:"type:text" json:"note"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(30);default:'cash_on_delivery'" json:"payment_method"`
	Subtotal    float64       `gorm:"not null" json:"subtotal"`
	DeliveryFee float64       `gorm:"not null" json:"delivery_fee"`
	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	Status      OrderStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem denormalizes the product name, SKU and image at order time so the
// order record stays stable when the catalog changes afterwards.
type OrderItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	ProductID   uint           `gorm:"not null;index" json:"product_id"`
	VariantID   *uint          `gorm:"index" json:"variant_id,omitempty"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	UnitPrice   float64        `gorm:"not null" json:"unit_price"`
	ProductName string         `gorm:"not null" json:"product_name"`
	SKU         string         `gorm:"not null" json:"sku"`
	ImageURL    string         `json:"image_url"`
	VariantName string         `json:"variant_name"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order          `gorm:"foreignKey:OrderID" json:"-"`
	Product Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
