package service

import (
	"errors"

	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/cart"
	"github.com/selhani/parfumo-backend/internal/pricing"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOutOfStock      = errors.New("product is out of stock")
)

// StorageFactory yields the persistence slot for a cart ID. Production wires
// a Redis slot per ID; tests substitute an in-memory fake.
type StorageFactory func(cartID string) cart.Storage

// CartView is the serialized cart plus every derived total. Totals are
// computed from the items on every read, never stored.
type CartView struct {
	CartID        string      `json:"cart_id"`
	Items         []cart.Item `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	DeliveryFee   float64     `json:"delivery_fee"`
	Total         float64     `json:"total"`
	TotalQuantity int         `json:"total_quantity"`
	ItemCount     int         `json:"item_count"`
	Open          bool        `json:"open"`
}

type CartService interface {
	GetCart(cartID string) (*CartView, error)
	AddItem(cartID string, productID uint, variantID *uint, quantity int) (*CartView, error)
	UpdateQuantity(cartID, itemID string, quantity int) (*CartView, error)
	RemoveItem(cartID, itemID string) (*CartView, error)
	ClearCart(cartID string) (*CartView, error)
}

type cartService struct {
	productRepo repository.ProductRepository
	variantRepo repository.ProductVariantRepository
	settings    SettingService
	storageFor  StorageFactory
}

func NewCartService(
	productRepo repository.ProductRepository,
	variantRepo repository.ProductVariantRepository,
	settings SettingService,
	storageFor StorageFactory,
) CartService {
	return &cartService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		settings:    settings,
		storageFor:  storageFor,
	}
}

func (s *cartService) load(cartID string) (*cart.Cart, error) {
	return cart.New(s.storageFor(cartID), s.settings.PricingRules())
}

func (s *cartService) GetCart(cartID string) (*CartView, error) {
	c, err := s.load(cartID)
	if err != nil {
		logger.Error("Failed to load cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return s.view(cartID, c), nil
}

func (s *cartService) AddItem(cartID string, productID uint, variantID *uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart add failed: product not found", map[string]interface{}{
				"cart_id":    cartID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	unitPrice := pricing.EffectivePrice(product.Price, product.DiscountPrice)
	stock := product.StockQuantity
	variantName := ""

	if variantID != nil {
		variant, err := s.variantRepo.FindByID(*variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}
		if variant.ProductID != productID {
			return nil, ErrVariantNotFound
		}
		unitPrice += variant.AdditionalPrice
		stock = variant.StockQuantity
		variantName = variant.Name
	}

	if stock <= 0 {
		logger.Warn("Cart add failed: out of stock", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
			"variant_id": variantID,
		})
		return nil, ErrOutOfStock
	}

	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	err = c.AddItem(cart.ItemParams{
		ProductID:     productID,
		VariantID:     variantID,
		Name:          product.Name,
		Slug:          product.Slug,
		ImageURL:      product.ImageURL,
		SKU:           product.SKU,
		Price:         unitPrice,
		Quantity:      quantity,
		StockQuantity: stock,
		VariantName:   variantName,
	})
	if err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	})
	return s.view(cartID, c), nil
}

func (s *cartService) UpdateQuantity(cartID, itemID string, quantity int) (*CartView, error) {
	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	if err := c.UpdateQuantity(itemID, quantity); err != nil {
		logger.Error("Failed to update cart quantity", err, map[string]interface{}{
			"cart_id": cartID,
			"item_id": itemID,
		})
		return nil, err
	}
	return s.view(cartID, c), nil
}

func (s *cartService) RemoveItem(cartID, itemID string) (*CartView, error) {
	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	if err := c.RemoveItem(itemID); err != nil {
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_id": cartID,
			"item_id": itemID,
		})
		return nil, err
	}
	return s.view(cartID, c), nil
}

func (s *cartService) ClearCart(cartID string) (*CartView, error) {
	c, err := s.load(cartID)
	if err != nil {
		return nil, err
	}

	if err := c.Clear(); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"cart_id": cartID,
	})
	return s.view(cartID, c), nil
}

func (s *cartService) view(cartID string, c *cart.Cart) *CartView {
	return &CartView{
		CartID:        cartID,
		Items:         c.Items(),
		Subtotal:      c.Subtotal(),
		DeliveryFee:   c.DeliveryFee(),
		Total:         c.Total(),
		TotalQuantity: c.TotalQuantity(),
		ItemCount:     c.Len(),
		Open:          c.Open(),
	}
}
