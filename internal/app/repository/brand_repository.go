package repository

import (
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

type BrandRepository interface {
	Create(brand *model.Brand) error
	FindAll() ([]model.Brand, error)
	FindByID(id uint) (*model.Brand, error)
	FindBySlug(slug string) (*model.Brand, error)
	SlugExists(slug string) (bool, error)
	Update(brand *model.Brand) error
	Delete(id uint) error
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(brand *model.Brand) error {
	if err := r.db.Create(brand).Error; err != nil {
		logger.Error("Failed to create brand in database", err, map[string]interface{}{
			"name": brand.Name,
		})
		return err
	}
	return nil
}

func (r *brandRepository) FindAll() ([]model.Brand, error) {
	var brands []model.Brand
	if err := r.db.Order("name ASC").Find(&brands).Error; err != nil {
		logger.Error("Failed to list brands", err, nil)
		return nil, err
	}
	return brands, nil
}

func (r *brandRepository) FindByID(id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) FindBySlug(slug string) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Brand{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *brandRepository) Update(brand *model.Brand) error {
	if err := r.db.Save(brand).Error; err != nil {
		logger.Error("Failed to update brand in database", err, map[string]interface{}{
			"brand_id": brand.ID,
		})
		return err
	}
	return nil
}

func (r *brandRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Brand{}, id).Error; err != nil {
		logger.Error("Failed to delete brand from database", err, map[string]interface{}{
			"brand_id": id,
		})
		return err
	}
	return nil
}
