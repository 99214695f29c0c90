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

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url"`
}

// ListCategories returns all categories
// GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		log.Error("Failed to fetch categories", err, nil)
		apperrors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategoryBySlug returns one category
// GET /api/v1/categories/:slug
func (ctrl *CategoryController) GetCategoryBySlug(c *gin.Context) {
	slug := c.Param("slug")

	category, err := ctrl.categoryService.GetCategoryBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
	})
}

// CreateCategory creates a category (Admin only)
// POST /api/v1/admin/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid category data")
		return
	}

	category := &model.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ImageURL: req.ImageURL,
	}

	if err := ctrl.categoryService.CreateCategory(category); err != nil {
		log.Error("Failed to create category", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"category": category,
	})
}

// UpdateCategory updates a category (Admin only)
// PUT /api/v1/admin/categories/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid category data")
		return
	}

	category := &model.Category{
		ID:       id,
		Name:     req.Name,
		Slug:     req.Slug,
		ImageURL: req.ImageURL,
	}

	if err := ctrl.categoryService.UpdateCategory(category); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to update category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
	})
}

// DeleteCategory deletes a category (Admin only)
// DELETE /api/v1/admin/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to delete category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
