package model

import (
	"time"
)

// Setting keys understood by the storefront.
const (
	SettingStoreName             = "store_name"
	SettingCurrency              = "currency"
	SettingWhatsAppNumber        = "whatsapp_number"
	SettingDeliveryFee           = "delivery_fee"
	SettingFreeDeliveryThreshold = "free_delivery_threshold"
	SettingLowStockThreshold     = "low_stock_threshold"
)

type Setting struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
