package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/cart"
	"github.com/selhani/parfumo-backend/internal/pricing"
	"github.com/selhani/parfumo-backend/internal/ws"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/selhani/parfumo-backend/pkg/util"
	"github.com/selhani/parfumo-backend/pkg/whatsapp"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// MissingFieldsError reports which required customer fields are absent.
// Nothing is submitted when validation fails.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// CheckoutInput is the customer form posted at checkout.
type CheckoutInput struct {
	CartID        string
	UserID        *uint
	FullName      string
	Phone         string
	City          string
	Address       string
	Note          string
	PaymentMethod model.PaymentMethod
}

// CheckoutResult is returned only after the order row is persisted; the
// WhatsApp link is never produced without a stored order.
type CheckoutResult struct {
	Order       *model.Order `json:"order"`
	Message     string       `json:"message"`
	WhatsAppURL string       `json:"whatsapp_url"`
}

type CheckoutService interface {
	Checkout(input CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	orderRepo  repository.OrderRepository
	settings   SettingService
	storageFor StorageFactory
	hub        *ws.Hub
	db         *gorm.DB
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	settings SettingService,
	storageFor StorageFactory,
	hub *ws.Hub,
	db *gorm.DB,
) CheckoutService {
	return &checkoutService{
		orderRepo:  orderRepo,
		settings:   settings,
		storageFor: storageFor,
		hub:        hub,
		db:         db,
	}
}

func (s *checkoutService) Checkout(input CheckoutInput) (*CheckoutResult, error) {
	if err := validateCustomer(input); err != nil {
		logger.Warn("Checkout rejected: missing customer fields", map[string]interface{}{
			"cart_id": input.CartID,
			"fields":  err.Fields,
		})
		return nil, err
	}

	shopperCart, err := cart.New(s.storageFor(input.CartID), s.settings.PricingRules())
	if err != nil {
		logger.Error("Failed to load cart for checkout", err, map[string]interface{}{
			"cart_id": input.CartID,
		})
		return nil, err
	}

	items := shopperCart.Items()
	if len(items) == 0 {
		logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
			"cart_id": input.CartID,
		})
		return nil, ErrEmptyCart
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"cart_id":    input.CartID,
		"user_id":    input.UserID,
		"item_count": len(items),
	})

	if input.PaymentMethod == "" {
		input.PaymentMethod = model.PaymentCashOnDelivery
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"cart_id": input.CartID,
			})
		}
	}()

	var (
		subtotal   float64
		orderItems []model.OrderItem
	)

	for _, item := range items {
		// Re-read under lock: name, SKU, image and price are snapshotted
		// from the row as it is now, not from what the client sent.
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product vanished during checkout", map[string]interface{}{
					"cart_id":    input.CartID,
					"product_id": item.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during checkout", err, map[string]interface{}{
				"cart_id":    input.CartID,
				"product_id": item.ProductID,
			})
			return nil, err
		}

		unitPrice := pricing.EffectivePrice(product.Price, product.DiscountPrice)
		variantName := ""

		var variant *model.ProductVariant
		if item.VariantID != nil {
			var v model.ProductVariant
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&v, *item.VariantID).Error; err != nil {
				tx.Rollback()
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrVariantNotFound
				}
				logger.Error("Failed to fetch variant during checkout", err, map[string]interface{}{
					"cart_id":    input.CartID,
					"variant_id": *item.VariantID,
				})
				return nil, err
			}
			if v.ProductID != item.ProductID {
				tx.Rollback()
				return nil, ErrVariantNotFound
			}
			if v.StockQuantity < item.Quantity {
				tx.Rollback()
				logger.Warn("Checkout failed: insufficient variant stock", map[string]interface{}{
					"cart_id":    input.CartID,
					"variant_id": v.ID,
					"requested":  item.Quantity,
					"available":  v.StockQuantity,
				})
				return nil, ErrInsufficientStock
			}
			unitPrice += v.AdditionalPrice
			variantName = v.Name
			variant = &v
		} else if product.StockQuantity < item.Quantity {
			tx.Rollback()
			logger.Warn("Checkout failed: insufficient product stock", map[string]interface{}{
				"cart_id":    input.CartID,
				"product_id": product.ID,
				"requested":  item.Quantity,
				"available":  product.StockQuantity,
			})
			return nil, ErrInsufficientStock
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID:   product.ID,
			VariantID:   item.VariantID,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			ProductName: product.Name,
			SKU:         snapshotSKU(&product, variant),
			ImageURL:    product.ImageURL,
			VariantName: variantName,
		})
		subtotal += unitPrice * float64(item.Quantity)

		if variant != nil {
			if err := tx.Model(&model.ProductVariant{}).
				Where("id = ?", variant.ID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				logger.Error("Failed to decrement variant stock", err, map[string]interface{}{
					"variant_id": variant.ID,
				})
				return nil, err
			}
		} else {
			if err := tx.Model(&model.Product{}).
				Where("id = ?", product.ID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				logger.Error("Failed to decrement product stock", err, map[string]interface{}{
					"product_id": product.ID,
				})
				return nil, err
			}
		}
	}

	// Totals are recomputed server-side from the snapshot prices; client
	// figures are never trusted.
	rules := s.settings.PricingRules()
	deliveryFee := rules.DeliveryFeeFor(subtotal)

	order := &model.Order{
		OrderNumber:   util.GenerateOrderNumber(),
		UserID:        input.UserID,
		FullName:      input.FullName,
		Phone:         input.Phone,
		City:          input.City,
		Address:       input.Address,
		Note:          input.Note,
		PaymentMethod: input.PaymentMethod,
		Subtotal:      subtotal,
		DeliveryFee:   deliveryFee,
		TotalAmount:   subtotal + deliveryFee,
		Status:        model.OrderStatusPending,
		OrderItems:    orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"cart_id": input.CartID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"cart_id": input.CartID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"item_count":   len(orderItems),
	})

	// Order is durable from here on. The cart clear and the notification
	// are best-effort; a failure leaves a stale cart, never a lost order.
	if err := shopperCart.Clear(); err != nil {
		logger.Warn("Failed to clear cart after checkout", map[string]interface{}{
			"cart_id": input.CartID,
			"error":   err.Error(),
		})
	}

	if s.hub != nil {
		s.hub.BroadcastOrderCreated(order)
	}

	message, link := s.buildMessage(order)
	return &CheckoutResult{
		Order:       order,
		Message:     message,
		WhatsAppURL: link,
	}, nil
}

func validateCustomer(input CheckoutInput) *MissingFieldsError {
	var missing []string
	if strings.TrimSpace(input.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(input.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(input.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(input.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func snapshotSKU(product *model.Product, variant *model.ProductVariant) string {
	if variant != nil && variant.SKU != "" {
		return variant.SKU
	}
	return product.SKU
}

func (s *checkoutService) buildMessage(order *model.Order) (string, string) {
	lines := make([]whatsapp.OrderLine, len(order.OrderItems))
	for i, item := range order.OrderItems {
		lines[i] = whatsapp.OrderLine{
			Name:        item.ProductName,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	message := whatsapp.FormatMessage(whatsapp.OrderSummary{
		StoreName:   s.settings.StoreName(),
		OrderNumber: order.OrderNumber,
		FullName:    order.FullName,
		Phone:       order.Phone,
		City:        order.City,
		Address:     order.Address,
		Note:        order.Note,
		Lines:       lines,
		Subtotal:    order.Subtotal,
		DeliveryFee: order.DeliveryFee,
		Total:       order.TotalAmount,
		Currency:    s.settings.Currency(),
	})

	return message, whatsapp.DeepLink(s.settings.WhatsAppNumber(), message)
}
