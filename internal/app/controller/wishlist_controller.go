package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

// GetWishlist lists the authenticated user's saved products
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	items, err := ctrl.wishlistService.GetWishlist(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// AddToWishlist saves a product for later
// POST /api/v1/wishlist/:productId
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
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

	item, err := ctrl.wishlistService.AddToWishlist(userID, productID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrWishlistItemExists):
			apperrors.Conflict(c, apperrors.WishlistItemExists, "Product is already in your wishlist")
		default:
			log.Error("Failed to add to wishlist", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			apperrors.InternalError(c, "Failed to add to wishlist")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item": item,
	})
}

// RemoveFromWishlist drops a saved product
// DELETE /api/v1/wishlist/:productId
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := ctrl.wishlistService.RemoveFromWishlist(userID, productID); err != nil {
		if errors.Is(err, service.ErrWishlistItemNotFound) {
			apperrors.NotFound(c, apperrors.WishlistItemNotFound, "Product is not in your wishlist")
			return
		}
		apperrors.InternalError(c, "Failed to remove from wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Removed from wishlist",
	})
}
