package router

import (
	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/config"
	"github.com/selhani/parfumo-backend/internal/app/controller"
	"github.com/selhani/parfumo-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	productController   *controller.ProductController
	brandController     *controller.BrandController
	categoryController  *controller.CategoryController
	cartController      *controller.CartController
	checkoutController  *controller.CheckoutController
	orderController     *controller.OrderController
	reviewController    *controller.ReviewController
	wishlistController  *controller.WishlistController
	settingController   *controller.SettingController
	uploadController    *controller.UploadController
	dashboardController *controller.DashboardController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	brandController *controller.BrandController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	wishlistController *controller.WishlistController,
	settingController *controller.SettingController,
	uploadController *controller.UploadController,
	dashboardController *controller.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		productController:   productController,
		brandController:     brandController,
		categoryController:  categoryController,
		cartController:      cartController,
		checkoutController:  checkoutController,
		orderController:     orderController,
		reviewController:    reviewController,
		wishlistController:  wishlistController,
		settingController:   settingController,
		uploadController:    uploadController,
		dashboardController: dashboardController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Parfumo API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/store", r.settingController.GetStoreInfo)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:slug", r.productController.GetProductBySlug)
		}

		brands := v1.Group("/brands")
		{
			brands.GET("", r.brandController.ListBrands)
			brands.GET("/:slug", r.brandController.GetBrandBySlug)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:slug", r.categoryController.GetCategoryBySlug)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/:productId", r.reviewController.GetProductReviews)
			reviews.POST("/:productId",
				r.authMiddleware.Authenticate(),
				r.reviewController.CreateReview,
			)
		}

		// The cart is anonymous; identity comes from the X-Cart-ID header
		cart := v1.Group("/cart")
		cart.Use(middleware.CartSession())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.ClearCart)
		}

		v1.POST("/checkout",
			middleware.CartSession(),
			r.authMiddleware.OptionalAuthenticate(),
			r.checkoutController.Checkout,
		)

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetMyOrder)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(r.authMiddleware.Authenticate())
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("/:productId", r.wishlistController.AddToWishlist)
			wishlist.DELETE("/:productId", r.wishlistController.RemoveFromWishlist)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", r.productController.CreateProduct)
				adminProducts.PUT("/:id", r.productController.UpdateProduct)
				adminProducts.DELETE("/:id", r.productController.DeleteProduct)
				adminProducts.POST("/:id/variants", r.productController.CreateVariant)
				adminProducts.PUT("/:id/variants/:variant_id", r.productController.UpdateVariant)
				adminProducts.DELETE("/:id/variants/:variant_id", r.productController.DeleteVariant)
			}

			adminBrands := admin.Group("/brands")
			{
				adminBrands.POST("", r.brandController.CreateBrand)
				adminBrands.PUT("/:id", r.brandController.UpdateBrand)
				adminBrands.DELETE("/:id", r.brandController.DeleteBrand)
			}

			adminCategories := admin.Group("/categories")
			{
				adminCategories.POST("", r.categoryController.CreateCategory)
				adminCategories.PUT("/:id", r.categoryController.UpdateCategory)
				adminCategories.DELETE("/:id", r.categoryController.DeleteCategory)
			}

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", r.orderController.ListOrders)
				adminOrders.GET("/stats", r.orderController.GetStats)
				adminOrders.GET("/export", r.orderController.ExportOrders)
				adminOrders.GET("/:id", r.orderController.GetOrder)
				adminOrders.PUT("/:id/status", r.orderController.UpdateStatus)
			}

			adminReviews := admin.Group("/reviews")
			{
				adminReviews.GET("/pending", r.reviewController.ListPendingReviews)
				adminReviews.PUT("/:id/approve", r.reviewController.ApproveReview)
				adminReviews.DELETE("/:id", r.reviewController.DeleteReview)
			}

			adminSettings := admin.Group("/settings")
			{
				adminSettings.GET("", r.settingController.ListSettings)
				adminSettings.PUT("/:key", r.settingController.UpdateSetting)
			}

			admin.POST("/uploads/presign", r.uploadController.PresignUpload)
			admin.GET("/dashboard/live", r.dashboardController.LiveOrders)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Cart-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Cart-ID, Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
