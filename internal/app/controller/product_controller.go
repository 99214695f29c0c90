package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/app/service"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name          string              `json:"name" binding:"required"`
	Slug          string              `json:"slug"`
	SKU           string              `json:"sku" binding:"required"`
	Description   string              `json:"description"`
	BrandID       uint                `json:"brand_id" binding:"required"`
	CategoryID    uint                `json:"category_id" binding:"required"`
	Price         float64             `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64            `json:"discount_price"`
	VolumeML      int                 `json:"volume_ml"`
	Gender        model.ProductGender `json:"gender"`
	StockQuantity int                 `json:"stock_quantity" binding:"gte=0"`
	ImageURL      string              `json:"image_url"`
	Gallery       []string            `json:"gallery"`
	Featured      bool                `json:"featured"`
}

type VariantRequest struct {
	Name            string  `json:"name" binding:"required"`
	SKU             string  `json:"sku" binding:"required"`
	AdditionalPrice float64 `json:"additional_price"`
	StockQuantity   int     `json:"stock_quantity" binding:"gte=0"`
	IsDefault       bool    `json:"is_default"`
}

// ListProducts returns the filtered catalog
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := parseProductFilter(c)
	products, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductBySlug returns one product with variants and review aggregates
// GET /api/v1/products/:slug
func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")
	product, err := ctrl.productService.GetProductBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a new product (Admin only)
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product := productFromRequest(&req)
	if err := ctrl.productService.CreateProduct(product); err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Price must be positive")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
			"sku":  req.SKU,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct updates an existing product (Admin only)
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product := productFromRequest(&req)
	product.ID = id

	if err := ctrl.productService.UpdateProduct(product); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidPrice):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Price must be positive")
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct deletes a product (Admin only)
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete product")
		return
	}

	log.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// CreateVariant adds a variant to a product (Admin only)
// POST /api/v1/admin/products/:id/variants
func (ctrl *ProductController) CreateVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid variant data")
		return
	}

	variant := &model.ProductVariant{
		ProductID:       productID,
		Name:            req.Name,
		SKU:             req.SKU,
		AdditionalPrice: req.AdditionalPrice,
		StockQuantity:   req.StockQuantity,
		IsDefault:       req.IsDefault,
	}

	if err := ctrl.productService.CreateVariant(variant); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to create variant", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create variant")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"variant": variant,
	})
}

// UpdateVariant updates a product variant (Admin only)
// PUT /api/v1/admin/products/:id/variants/:variant_id
func (ctrl *ProductController) UpdateVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := parseIDParam(c, "variant_id")
	if !ok {
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid variant data")
		return
	}

	variant := &model.ProductVariant{
		ID:              variantID,
		ProductID:       productID,
		Name:            req.Name,
		SKU:             req.SKU,
		AdditionalPrice: req.AdditionalPrice,
		StockQuantity:   req.StockQuantity,
		IsDefault:       req.IsDefault,
	}

	if err := ctrl.productService.UpdateVariant(variant); err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			apperrors.NotFound(c, apperrors.VariantNotFound, "Variant not found")
			return
		}
		log.Error("Failed to update variant", err, map[string]interface{}{
			"variant_id": variantID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update variant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variant": variant,
	})
}

// DeleteVariant removes a product variant (Admin only)
// DELETE /api/v1/admin/products/:id/variants/:variant_id
func (ctrl *ProductController) DeleteVariant(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := parseIDParam(c, "variant_id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteVariant(productID, variantID); err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			apperrors.NotFound(c, apperrors.VariantNotFound, "Variant not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete variant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant deleted successfully",
	})
}

func productFromRequest(req *ProductRequest) *model.Product {
	gender := req.Gender
	if gender == "" {
		gender = model.GenderUnisex
	}
	return &model.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		SKU:           req.SKU,
		Description:   req.Description,
		BrandID:       req.BrandID,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		VolumeML:      req.VolumeML,
		Gender:        gender,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		Gallery:       pq.StringArray(req.Gallery),
		Featured:      req.Featured,
	}
}

func parseProductFilter(c *gin.Context) repository.ProductFilter {
	filter := repository.ProductFilter{
		CategorySlug:    c.Query("category"),
		BrandSlug:       c.Query("brand"),
		Search:          c.Query("search"),
		SortBy:          repository.ProductSort(c.Query("sort")),
		SortAscending:   c.Query("order") == "asc",
		IncludeVariants: c.Query("include_variants") == "true",
	}

	if gender := c.Query("gender"); gender != "" {
		g := model.ProductGender(gender)
		filter.Gender = &g
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		filter.Featured = &featured
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		filter.Offset = v
	}

	return filter
}

// parseIDParam reads a numeric path parameter, responding 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(value), true
}
