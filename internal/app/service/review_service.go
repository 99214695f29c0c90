package service

import (
	"errors"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this product")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
)

// ProductReviews is the public review block for a product page.
type ProductReviews struct {
	Reviews       []model.Review `json:"reviews"`
	AverageRating float64        `json:"average_rating"`
	ReviewCount   int64          `json:"review_count"`
}

type ReviewService interface {
	CreateReview(userID, productID uint, rating int, comment string) (*model.Review, error)
	GetProductReviews(productID uint) (*ProductReviews, error)
	ListPendingReviews() ([]model.Review, error)
	ApproveReview(reviewID uint) (*model.Review, error)
	DeleteReview(reviewID uint) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) CreateReview(userID, productID uint, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// One review per user per product
	_, err := s.reviewRepo.FindByUserAndProduct(userID, productID)
	if err == nil {
		logger.Warn("Review rejected: duplicate", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrReviewAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		Approved:  false, // admin-moderated
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Info("Review submitted for moderation", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(productID uint) (*ProductReviews, error) {
	reviews, err := s.reviewRepo.FindApprovedByProductID(productID)
	if err != nil {
		return nil, err
	}

	average, count, err := s.reviewRepo.AverageRating(productID)
	if err != nil {
		return nil, err
	}

	return &ProductReviews{
		Reviews:       reviews,
		AverageRating: average,
		ReviewCount:   count,
	}, nil
}

func (s *reviewService) ListPendingReviews() ([]model.Review, error) {
	return s.reviewRepo.FindPending()
}

func (s *reviewService) ApproveReview(reviewID uint) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.Approved {
		return review, nil
	}

	review.Approved = true
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	logger.Info("Review approved", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
	})
	return review, nil
}

func (s *reviewService) DeleteReview(reviewID uint) error {
	if _, err := s.reviewRepo.FindByID(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return s.reviewRepo.Delete(reviewID)
}
