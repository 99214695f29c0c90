package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductGender string

const (
	GenderMen    ProductGender = "men"
	GenderWomen  ProductGender = "women"
	GenderUnisex ProductGender = "unisex"
)

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`
	SKU           string         `gorm:"uniqueIndex;not null" json:"sku"`
	Description   string         `gorm:"type:text" json:"description"`
	BrandID       uint           `gorm:"not null;index" json:"brand_id"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	Price         float64        `gorm:"not null" json:"price"`
	DiscountPrice *float64       `json:"discount_price,omitempty"`
	VolumeML      int            `json:"volume_ml"` // base bottle size
	Gender        ProductGender  `gorm:"type:varchar(20);default:'unisex'" json:"gender"`
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	ImageURL      string         `json:"image_url"`
	Gallery       pq.StringArray `gorm:"type:text[]" json:"gallery"`
	Featured      bool           `gorm:"default:false;index" json:"featured"`
	ViewCount     int            `gorm:"default:0" json:"view_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Brand    Brand            `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Category Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Reviews  []Review         `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice returns the discount price when one is set, else the base price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}
