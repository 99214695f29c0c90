package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddCartItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	// Zero or negative removes the line
	Quantity int `json:"quantity"`
}

// GetCart returns the cart with all derived totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, _ := middleware.GetCartID(c)
	view, err := ctrl.cartService.GetCart(cartID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// AddItem adds a product (or variant) line to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, _ := middleware.GetCartID(c)

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart item data")
		return
	}

	view, err := ctrl.cartService.AddItem(cartID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrVariantNotFound):
			apperrors.NotFound(c, apperrors.VariantNotFound, "Variant not found")
		case errors.Is(err, service.ErrOutOfStock):
			apperrors.Conflict(c, apperrors.ProductOutOfStock, "This product is out of stock")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity must be positive")
		default:
			log.Error("Failed to add item to cart", err, map[string]interface{}{
				"cart_id":    cartID,
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "Failed to add item to cart")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// UpdateItem sets the quantity of a cart line
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, _ := middleware.GetCartID(c)
	itemID := c.Param("id")

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid quantity data")
		return
	}

	view, err := ctrl.cartService.UpdateQuantity(cartID, itemID, req.Quantity)
	if err != nil {
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_id": cartID,
			"item_id": itemID,
		})
		apperrors.InternalError(c, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// RemoveItem deletes a cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, _ := middleware.GetCartID(c)
	itemID := c.Param("id")

	view, err := ctrl.cartService.RemoveItem(cartID, itemID)
	if err != nil {
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_id": cartID,
			"item_id": itemID,
		})
		apperrors.InternalError(c, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, _ := middleware.GetCartID(c)
	view, err := ctrl.cartService.ClearCart(cartID)
	if err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		apperrors.InternalError(c, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}
