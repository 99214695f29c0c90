package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/pkg/util"
)

// CartIDHeader carries the opaque per-browser cart identifier. The cart is
// session-local state, not tied to authentication; guests and logged-in
// shoppers use the same slot.
const (
	CartIDHeader = "X-Cart-ID"
	CartIDKey    = "cart_id"
)

// CartSession resolves the cart ID from the request header, minting a fresh
// one when absent. The ID is always echoed back so the client can persist it.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := c.GetHeader(CartIDHeader)
		if cartID == "" {
			cartID = util.GenerateCartID()
		}

		c.Set(CartIDKey, cartID)
		c.Header(CartIDHeader, cartID)
		c.Next()
	}
}

// GetCartID extracts the cart ID from context.
func GetCartID(c *gin.Context) (string, bool) {
	cartID, exists := c.Get(CartIDKey)
	if !exists {
		return "", false
	}
	return cartID.(string), true
}
