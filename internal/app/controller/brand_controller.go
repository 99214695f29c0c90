package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type BrandController struct {
	brandService service.BrandService
}

func NewBrandController(brandService service.BrandService) *BrandController {
	return &BrandController{
		brandService: brandService,
	}
}

type BrandRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

// ListBrands returns all brands
// GET /api/v1/brands
func (ctrl *BrandController) ListBrands(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	brands, err := ctrl.brandService.ListBrands()
	if err != nil {
		log.Error("Failed to fetch brands", err, nil)
		apperrors.InternalError(c, "Failed to fetch brands")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brands": brands,
		"count":  len(brands),
	})
}

// GetBrandBySlug returns one brand
// GET /api/v1/brands/:slug
func (ctrl *BrandController) GetBrandBySlug(c *gin.Context) {
	slug := c.Param("slug")

	brand, err := ctrl.brandService.GetBrandBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrBrandNotFound) {
			apperrors.NotFound(c, apperrors.BrandNotFound, "Brand not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch brand")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brand": brand,
	})
}

// CreateBrand creates a brand (Admin only)
// POST /api/v1/admin/brands
func (ctrl *BrandController) CreateBrand(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid brand data")
		return
	}

	brand := &model.Brand{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	}

	if err := ctrl.brandService.CreateBrand(brand); err != nil {
		log.Error("Failed to create brand", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create brand")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"brand": brand,
	})
}

// UpdateBrand updates a brand (Admin only)
// PUT /api/v1/admin/brands/:id
func (ctrl *BrandController) UpdateBrand(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid brand data")
		return
	}

	brand := &model.Brand{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	}

	if err := ctrl.brandService.UpdateBrand(brand); err != nil {
		if errors.Is(err, service.ErrBrandNotFound) {
			apperrors.NotFound(c, apperrors.BrandNotFound, "Brand not found")
			return
		}
		log.Error("Failed to update brand", err, map[string]interface{}{
			"brand_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update brand")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brand": brand,
	})
}

// DeleteBrand deletes a brand (Admin only)
// DELETE /api/v1/admin/brands/:id
func (ctrl *BrandController) DeleteBrand(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.brandService.DeleteBrand(id); err != nil {
		if errors.Is(err, service.ErrBrandNotFound) {
			apperrors.NotFound(c, apperrors.BrandNotFound, "Brand not found")
			return
		}
		log.Error("Failed to delete brand", err, map[string]interface{}{
			"brand_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete brand")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Brand deleted successfully",
	})
}
