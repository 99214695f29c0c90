package repository

import (
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindApprovedByProductID(productID uint) ([]model.Review, error)
	FindPending() ([]model.Review, error)
	FindByUserAndProduct(userID, productID uint) (*model.Review, error)
	AverageRating(productID uint) (float64, int64, error)
	Update(review *model.Review) error
	Delete(id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"user_id":    review.UserID,
			"product_id": review.ProductID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindApprovedByProductID(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.Preload("User").
		Where("product_id = ? AND approved = ?", productID, true).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		logger.Error("Failed to list approved reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) FindPending() ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.Preload("User").Preload("Product").
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&reviews).Error; err != nil {
		logger.Error("Failed to list pending reviews", err, nil)
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) FindByUserAndProduct(userID, productID uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// AverageRating aggregates approved reviews only; pending reviews never
// affect the public rating.
func (r *reviewRepository) AverageRating(productID uint) (float64, int64, error) {
	type ratingAggregate struct {
		Average float64
		Count   int64
	}

	var agg ratingAggregate
	if err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND approved = ?", productID, true).
		Scan(&agg).Error; err != nil {
		logger.Error("Failed to compute average rating", err, map[string]interface{}{
			"product_id": productID,
		})
		return 0, 0, err
	}
	return agg.Average, agg.Count, nil
}

func (r *reviewRepository) Update(review *model.Review) error {
	if err := r.db.Save(review).Error; err != nil {
		logger.Error("Failed to update review in database", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Review{}, id).Error; err != nil {
		logger.Error("Failed to delete review from database", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}
