package repository

import (
	"fmt"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice      ProductSort = "price"
	ProductSortCreatedAt  ProductSort = "created_at"
	ProductSortPopularity ProductSort = "popularity"
	ProductSortViewCount  ProductSort = "view_count"
)

// effectivePriceExpr evaluates to the discount price when one applies, else
// the base price. Kept as plain SQL so it runs on both postgres and sqlite.
const effectivePriceExpr = "CASE WHEN products.discount_price IS NOT NULL AND products.discount_price > 0 AND products.discount_price < products.price THEN products.discount_price ELSE products.price END"

type ProductFilter struct {
	CategorySlug    string
	BrandSlug       string
	Gender          *model.ProductGender
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	Featured        *bool
	SortBy          ProductSort
	SortAscending   bool
	Limit           int
	Offset          int
	IncludeVariants bool
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	SlugExists(slug string) (bool, error)
	Update(product *model.Product) error
	Delete(id uint) error
	UpdateStock(id uint, delta int) error
	IncrementViewCount(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"sku":         product.SKU,
		"brand_id":    product.BrandID,
		"category_id": product.CategoryID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) baseQuery(includeVariants bool) *gorm.DB {
	query := r.db.Model(&model.Product{}).
		Preload("Brand").
		Preload("Category")
	if includeVariants {
		query = query.Preload("Variants")
	}
	return query
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":  filter.CategorySlug,
		"brand":     filter.BrandSlug,
		"gender":    filter.Gender,
		"search":    filter.Search,
		"featured":  filter.Featured,
		"sort_by":   filter.SortBy,
		"ascending": filter.SortAscending,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	query := r.baseQuery(filter.IncludeVariants)

	wishlistCountsSubquery := r.db.Table("wishlist_items").
		Select("wishlist_items.product_id, COUNT(*) AS count").
		Where("wishlist_items.deleted_at IS NULL").
		Group("wishlist_items.product_id")

	query = query.Joins("LEFT JOIN (?) AS wishlist_counts ON wishlist_counts.product_id = products.id", wishlistCountsSubquery)
	query = query.Select("products.*, COALESCE(wishlist_counts.count, 0) AS wishlist_count")

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}

	if filter.BrandSlug != "" {
		query = query.Joins("JOIN brands ON brands.id = products.brand_id").
			Where("brands.slug = ?", filter.BrandSlug)
	}

	if filter.Gender != nil {
		query = query.Where("products.gender = ?", *filter.Gender)
	}

	if filter.Featured != nil {
		query = query.Where("products.featured = ?", *filter.Featured)
	}

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("products.name LIKE ? OR products.description LIKE ? OR products.sku LIKE ?", like, like, like)
	}

	if filter.MinPrice != nil {
		query = query.Where(effectivePriceExpr+" >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where(effectivePriceExpr+" <= ?", *filter.MaxPrice)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}

	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order(effectivePriceExpr + " " + direction)
	case ProductSortCreatedAt:
		query = query.Order("products.created_at " + direction)
	case ProductSortViewCount:
		query = query.Order("products.view_count " + direction)
		query = query.Order("products.created_at DESC")
	case ProductSortPopularity:
		fallthrough
	default:
		popularityExpr := "COALESCE(wishlist_counts.count, 0) * CASE WHEN products.view_count > 0 THEN products.view_count ELSE 0 END"
		query = query.Order(popularityExpr + " " + direction)
		query = query.Order("products.created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"brand":    filter.BrandSlug,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery(true).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery(true).Where("products.slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
			"name":       product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateStock(id uint, delta int) error {
	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		logger.Error("Failed to update product stock in database", err, map[string]interface{}{
			"product_id": id,
			"delta":      delta,
		})
		return err
	}
	return nil
}

func (r *productRepository) IncrementViewCount(id uint) error {
	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		logger.Error("Failed to increment product view count in database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
