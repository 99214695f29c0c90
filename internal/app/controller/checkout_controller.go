package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type CheckoutRequest struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Note          string `json:"note"`
	PaymentMethod string `json:"payment_method"`
}

// Checkout converts the cart into a persisted order and returns the
// WhatsApp deep link for the customer to send
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, _ := middleware.GetCartID(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout data")
		return
	}

	input := service.CheckoutInput{
		CartID:        cartID,
		FullName:      req.FullName,
		Phone:         req.Phone,
		City:          req.City,
		Address:       req.Address,
		Note:          req.Note,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	}
	if userID, exists := middleware.GetUserID(c); exists {
		input.UserID = &userID
	}

	result, err := ctrl.checkoutService.Checkout(input)
	if err != nil {
		var missing *service.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			apperrors.BadRequest(c, apperrors.CheckoutMissingField,
				"Missing required fields: "+strings.Join(missing.Fields, ", "))
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		case errors.Is(err, service.ErrInsufficientStock):
			apperrors.Conflict(c, apperrors.InsufficientStock, "Some items no longer have enough stock")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"cart_id": cartID,
			})
			apperrors.InternalError(c, "Checkout failed")
		}
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"order_number": result.Order.OrderNumber,
		"total":        result.Order.TotalAmount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"order":        result.Order,
		"message":      result.Message,
		"whatsapp_url": result.WhatsAppURL,
	})
}
