package service

import (
	"errors"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/pricing"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/selhani/parfumo-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
	ErrInvalidPrice    = errors.New("product price must be positive")
)

// ProductView decorates a product with the display fields the storefront
// derives from prices and stock: effective price, discount percent and the
// stock status classification.
type ProductView struct {
	model.Product
	EffectivePrice  float64           `json:"effective_price"`
	DiscountPercent int               `json:"discount_percent"`
	StockStatus     model.StockStatus `json:"stock_status"`
}

// ProductDetail adds review aggregates on top of the catalog view.
type ProductDetail struct {
	ProductView
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]ProductView, error)
	GetProductBySlug(slug string) (*ProductDetail, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	CreateVariant(variant *model.ProductVariant) error
	UpdateVariant(variant *model.ProductVariant) error
	DeleteVariant(productID, variantID uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	variantRepo repository.ProductVariantRepository
	reviewRepo  repository.ReviewRepository
	settings    SettingService
}

func NewProductService(
	productRepo repository.ProductRepository,
	variantRepo repository.ProductVariantRepository,
	reviewRepo repository.ReviewRepository,
	settings SettingService,
) ProductService {
	return &productService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		reviewRepo:  reviewRepo,
		settings:    settings,
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]ProductView, error) {
	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, err
	}

	rules := s.settings.PricingRules()
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = s.decorate(products[i], rules)
	}
	return views, nil
}

func (s *productService) GetProductBySlug(slug string) (*ProductDetail, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// View counter feeds the popularity sort; a failed bump never blocks
	// the read.
	if err := s.productRepo.IncrementViewCount(product.ID); err != nil {
		logger.Warn("Failed to increment product view count", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
	}

	average, count, err := s.reviewRepo.AverageRating(product.ID)
	if err != nil {
		return nil, err
	}

	rules := s.settings.PricingRules()
	return &ProductDetail{
		ProductView:   s.decorate(*product, rules),
		AverageRating: average,
		ReviewCount:   count,
	}, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	if product.Price <= 0 {
		return ErrInvalidPrice
	}

	if product.Slug == "" {
		slug, err := util.UniqueSlug(product.Name, s.productRepo.SlugExists)
		if err != nil {
			return err
		}
		product.Slug = slug
	}

	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"slug":       product.Slug,
		"sku":        product.SKU,
	})
	return nil
}

func (s *productService) UpdateProduct(product *model.Product) error {
	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if product.Price <= 0 {
		return ErrInvalidPrice
	}

	// Slug and counters stay stable across catalog edits
	if product.Slug == "" {
		product.Slug = existing.Slug
	}
	product.ViewCount = existing.ViewCount
	product.CreatedAt = existing.CreatedAt

	if err := s.productRepo.Update(product); err != nil {
		return err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(id)
}

func (s *productService) CreateVariant(variant *model.ProductVariant) error {
	if _, err := s.productRepo.FindByID(variant.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.variantRepo.Create(variant); err != nil {
		return err
	}

	logger.Info("Product variant created", map[string]interface{}{
		"product_id": variant.ProductID,
		"variant_id": variant.ID,
		"name":       variant.Name,
	})
	return nil
}

func (s *productService) UpdateVariant(variant *model.ProductVariant) error {
	existing, err := s.variantRepo.FindByID(variant.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVariantNotFound
		}
		return err
	}
	if existing.ProductID != variant.ProductID {
		return ErrVariantNotFound
	}

	variant.CreatedAt = existing.CreatedAt
	return s.variantRepo.Update(variant)
}

func (s *productService) DeleteVariant(productID, variantID uint) error {
	existing, err := s.variantRepo.FindByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVariantNotFound
		}
		return err
	}
	if existing.ProductID != productID {
		return ErrVariantNotFound
	}
	return s.variantRepo.Delete(variantID)
}

func (s *productService) decorate(product model.Product, rules pricing.Rules) ProductView {
	return ProductView{
		Product:         product,
		EffectivePrice:  pricing.EffectivePrice(product.Price, product.DiscountPrice),
		DiscountPercent: pricing.DiscountPercent(product.Price, product.DiscountPrice),
		StockStatus:     rules.StockStatusFor(product.StockQuantity),
	}
}
