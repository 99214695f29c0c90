package controller

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
	"github.com/selhani/parfumo-backend/internal/ws"
)

// DashboardController exposes the admin live-order feed.
type DashboardController struct {
	hub *ws.Hub
}

func NewDashboardController(hub *ws.Hub) *DashboardController {
	return &DashboardController{
		hub: hub,
	}
}

// LiveOrders upgrades the connection and streams order events as they
// happen. Admins connect with the token in the query string since
// browsers cannot set headers on a WebSocket handshake.
// GET /api/v1/admin/dashboard/live
func (ctrl *DashboardController) LiveOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := ws.Serve(ctrl.hub, c.Writer, c.Request, userID); err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}
}
