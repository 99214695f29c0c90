package service

import (
	"errors"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrWishlistItemExists   = errors.New("product already in wishlist")
	ErrWishlistItemNotFound = errors.New("product not in wishlist")
)

type WishlistService interface {
	GetWishlist(userID uint) ([]model.WishlistItem, error)
	AddToWishlist(userID, productID uint) (*model.WishlistItem, error)
	RemoveFromWishlist(userID, productID uint) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) GetWishlist(userID uint) ([]model.WishlistItem, error) {
	return s.wishlistRepo.FindByUserID(userID)
}

func (s *wishlistService) AddToWishlist(userID, productID uint) (*model.WishlistItem, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	exists, err := s.wishlistRepo.Exists(userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWishlistItemExists
	}

	item := &model.WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.wishlistRepo.Create(item); err != nil {
		return nil, err
	}

	logger.Info("Product added to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return item, nil
}

func (s *wishlistService) RemoveFromWishlist(userID, productID uint) error {
	if err := s.wishlistRepo.DeleteByUserAndProduct(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistItemNotFound
		}
		return err
	}

	logger.Info("Product removed from wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}
