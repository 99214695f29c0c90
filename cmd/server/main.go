package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/selhani/parfumo-backend/config"
	"github.com/selhani/parfumo-backend/internal/app/controller"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/app/service"
	"github.com/selhani/parfumo-backend/internal/cart"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/selhani/parfumo-backend/internal/middleware"
	"github.com/selhani/parfumo-backend/internal/router"
	"github.com/selhani/parfumo-backend/internal/scheduler"
	"github.com/selhani/parfumo-backend/internal/storage"
	"github.com/selhani/parfumo-backend/internal/ws"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/selhani/parfumo-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console",
		EnableColor: true,
	})

	logger.Info("Starting Parfumo Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(&cfg.Store); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	brandRepo := repository.NewBrandRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	variantRepo := repository.NewProductVariantRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())
	settingRepo := repository.NewSettingRepository(db.GetDB())

	// Order events hub for the admin dashboard
	hub := ws.NewHub()
	go hub.Run()

	// Each cart lives in its own Redis slot keyed by cart ID
	cartStorage := func(cartID string) cart.Storage {
		return cart.NewRedisStorage(redis.GetClient(), cartID, cfg.Store.CartTTL)
	}

	// Services
	authService := service.NewAuthService(
		userRepo,
		redis.TokenBlacklist{},
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	settingService := service.NewSettingService(settingRepo, cfg.Store)
	brandService := service.NewBrandService(brandRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, variantRepo, reviewRepo, settingService)
	cartService := service.NewCartService(productRepo, variantRepo, settingService, cartStorage)
	checkoutService := service.NewCheckoutService(orderRepo, settingService, cartStorage, hub, db.GetDB())
	orderService := service.NewOrderService(orderRepo, hub)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)

	imageStorage := storage.NewImageStorage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	brandController := controller.NewBrandController(brandService)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	wishlistController := controller.NewWishlistController(wishlistService)
	settingController := controller.NewSettingController(settingService)
	uploadController := controller.NewUploadController(imageStorage)
	dashboardController := controller.NewDashboardController(hub)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	sweeper := scheduler.NewCartSweeper()
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start cart sweeper", err)
	}
	defer sweeper.Stop()

	r := router.NewRouter(
		authController,
		productController,
		brandController,
		categoryController,
		cartController,
		checkoutController,
		orderController,
		reviewController,
		wishlistController,
		settingController,
		uploadController,
		dashboardController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
