package service

import (
	"errors"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/selhani/parfumo-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrBrandNotFound = errors.New("brand not found")

type BrandService interface {
	ListBrands() ([]model.Brand, error)
	GetBrandBySlug(slug string) (*model.Brand, error)
	GetBrandByID(id uint) (*model.Brand, error)
	CreateBrand(brand *model.Brand) error
	UpdateBrand(brand *model.Brand) error
	DeleteBrand(id uint) error
}

type brandService struct {
	brandRepo repository.BrandRepository
}

func NewBrandService(brandRepo repository.BrandRepository) BrandService {
	return &brandService{brandRepo: brandRepo}
}

func (s *brandService) ListBrands() ([]model.Brand, error) {
	return s.brandRepo.FindAll()
}

func (s *brandService) GetBrandBySlug(slug string) (*model.Brand, error) {
	brand, err := s.brandRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

func (s *brandService) GetBrandByID(id uint) (*model.Brand, error) {
	brand, err := s.brandRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

func (s *brandService) CreateBrand(brand *model.Brand) error {
	if brand.Slug == "" {
		slug, err := util.UniqueSlug(brand.Name, s.brandRepo.SlugExists)
		if err != nil {
			return err
		}
		brand.Slug = slug
	}

	if err := s.brandRepo.Create(brand); err != nil {
		return err
	}

	logger.Info("Brand created", map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
		"slug":     brand.Slug,
	})
	return nil
}

func (s *brandService) UpdateBrand(brand *model.Brand) error {
	existing, err := s.brandRepo.FindByID(brand.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBrandNotFound
		}
		return err
	}

	// Slug stays stable across renames unless explicitly changed
	if brand.Slug == "" {
		brand.Slug = existing.Slug
	}
	brand.CreatedAt = existing.CreatedAt

	return s.brandRepo.Update(brand)
}

func (s *brandService) DeleteBrand(id uint) error {
	if _, err := s.brandRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBrandNotFound
		}
		return err
	}
	return s.brandRepo.Delete(id)
}
