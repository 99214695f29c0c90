package pricing

import (
	"math"

	"github.com/selhani/parfumo-backend/internal/app/model"
)

// Rules holds the storefront pricing configuration. Loaded from the settings
// table with config defaults as fallback.
type Rules struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
	LowStockThreshold     int
}

// DeliveryFeeFor returns 0 when the subtotal reaches the free-delivery
// threshold, else the flat fee.
func (r Rules) DeliveryFeeFor(subtotal float64) float64 {
	if subtotal >= r.FreeDeliveryThreshold {
		return 0
	}
	return r.DeliveryFee
}

// StockStatusFor classifies a stock quantity against the low-stock threshold.
func (r Rules) StockStatusFor(quantity int) model.StockStatus {
	switch {
	case quantity <= 0:
		return model.StockOutOfStock
	case quantity <= r.LowStockThreshold:
		return model.StockLowStock
	default:
		return model.StockInStock
	}
}

// EffectivePrice returns the discount price when one is set and lower than
// the base price, else the base price.
func EffectivePrice(price float64, discountPrice *float64) float64 {
	if discountPrice != nil && *discountPrice > 0 && *discountPrice < price {
		return *discountPrice
	}
	return price
}

// DiscountPercent returns the rounded display percentage for a discount.
// Returns 0 when no discount applies (nil, zero, or not below the base price).
func DiscountPercent(price float64, discountPrice *float64) int {
	if price <= 0 || discountPrice == nil || *discountPrice <= 0 || *discountPrice >= price {
		return 0
	}
	return int(math.Round((price - *discountPrice) / price * 100))
}
