package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// GetProductReviews returns the approved reviews for a product
// GET /api/v1/reviews/:productId
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	reviews, err := ctrl.reviewService.GetProductReviews(productID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// CreateReview submits a review; it stays hidden until approved
// POST /api/v1/reviews/:productId
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		return
	}

	review, err := ctrl.reviewService.CreateReview(userID, productID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrReviewAlreadyExists):
			apperrors.Conflict(c, apperrors.ReviewAlreadyExists, "You have already reviewed this product")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			apperrors.InternalError(c, "Failed to create review")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"review": review,
	})
}

// ListPendingReviews lists reviews awaiting moderation
// GET /api/v1/admin/reviews/pending
func (ctrl *ReviewController) ListPendingReviews(c *gin.Context) {
	reviews, err := ctrl.reviewService.ListPendingReviews()
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch pending reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// ApproveReview publishes a pending review
// PUT /api/v1/admin/reviews/:id/approve
func (ctrl *ReviewController) ApproveReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	review, err := ctrl.reviewService.ApproveReview(reviewID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
			return
		}
		apperrors.InternalError(c, "Failed to approve review")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review": review,
	})
}

// DeleteReview removes a review
// DELETE /api/v1/admin/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reviewService.DeleteReview(reviewID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
			return
		}
		apperrors.InternalError(c, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review deleted",
	})
}
