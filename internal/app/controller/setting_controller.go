package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type SettingController struct {
	settingService service.SettingService
}

func NewSettingController(settingService service.SettingService) *SettingController {
	return &SettingController{
		settingService: settingService,
	}
}

type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// GetStoreInfo returns the public storefront identity block
// GET /api/v1/store
func (ctrl *SettingController) GetStoreInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"store": ctrl.settingService.StoreInfo(),
	})
}

// ListSettings lists all settings rows for the admin panel
// GET /api/v1/admin/settings
func (ctrl *SettingController) ListSettings(c *gin.Context) {
	settings, err := ctrl.settingService.ListSettings()
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSetting changes one setting value
// PUT /api/v1/admin/settings/:key
func (ctrl *SettingController) UpdateSetting(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	key := c.Param("key")

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Value is required")
		return
	}

	if err := ctrl.settingService.UpdateSetting(key, req.Value); err != nil {
		if errors.Is(err, service.ErrUnknownSetting) {
			apperrors.NotFound(c, apperrors.SettingNotFound, "Unknown setting: "+key)
			return
		}
		log.Error("Failed to update setting", err, map[string]interface{}{
			"key": key,
		})
		apperrors.InternalError(c, "Failed to update setting")
		return
	}

	log.Info("Setting updated", map[string]interface{}{
		"key": key,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Setting updated",
	})
}
