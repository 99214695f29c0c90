package repository

import (
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductVariantRepository interface {
	Create(variant *model.ProductVariant) error
	FindByID(id uint) (*model.ProductVariant, error)
	FindByProductID(productID uint) ([]model.ProductVariant, error)
	Update(variant *model.ProductVariant) error
	Delete(id uint) error
	UpdateStock(id uint, delta int) error
}

type productVariantRepository struct {
	db *gorm.DB
}

func NewProductVariantRepository(db *gorm.DB) ProductVariantRepository {
	return &productVariantRepository{db: db}
}

func (r *productVariantRepository) Create(variant *model.ProductVariant) error {
	if err := r.db.Create(variant).Error; err != nil {
		logger.Error("Failed to create product variant in database", err, map[string]interface{}{
			"product_id": variant.ProductID,
			"name":       variant.Name,
		})
		return err
	}
	return nil
}

func (r *productVariantRepository) FindByID(id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *productVariantRepository) FindByProductID(productID uint) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	if err := r.db.Where("product_id = ?", productID).Order("additional_price ASC").Find(&variants).Error; err != nil {
		logger.Error("Failed to list product variants", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return variants, nil
}

func (r *productVariantRepository) Update(variant *model.ProductVariant) error {
	if err := r.db.Save(variant).Error; err != nil {
		logger.Error("Failed to update product variant in database", err, map[string]interface{}{
			"variant_id": variant.ID,
		})
		return err
	}
	return nil
}

func (r *productVariantRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.ProductVariant{}, id).Error; err != nil {
		logger.Error("Failed to delete product variant from database", err, map[string]interface{}{
			"variant_id": id,
		})
		return err
	}
	return nil
}

func (r *productVariantRepository) UpdateStock(id uint, delta int) error {
	if err := r.db.Model(&model.ProductVariant{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		logger.Error("Failed to update product variant stock in database", err, map[string]interface{}{
			"variant_id": id,
			"delta":      delta,
		})
		return err
	}
	return nil
}
