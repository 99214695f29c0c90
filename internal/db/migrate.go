package db

import (
	"errors"
	"fmt"

	"github.com/selhani/parfumo-backend/config"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/selhani/parfumo-backend/pkg/util"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Brand{},
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
		&model.WishlistItem{},
		&model.Setting{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed inserts settings defaults and the initial admin account. Existing rows
// are never overwritten, so it is safe to run on every startup.
func Seed(cfg *config.StoreConfig) error {
	logger.Info("Seeding initial data...")

	if err := seedSettings(cfg); err != nil {
		logger.Error("Failed to seed settings", err)
		return err
	}

	if err := seedAdminUser(); err != nil {
		logger.Error("Failed to seed admin user", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedSettings(cfg *config.StoreConfig) error {
	defaults := map[string]string{
		model.SettingStoreName:             cfg.Name,
		model.SettingCurrency:              cfg.Currency,
		model.SettingWhatsAppNumber:        cfg.WhatsAppNumber,
		model.SettingDeliveryFee:           fmt.Sprintf("%g", cfg.DeliveryFee),
		model.SettingFreeDeliveryThreshold: fmt.Sprintf("%g", cfg.FreeDeliveryThreshold),
		model.SettingLowStockThreshold:     fmt.Sprintf("%d", cfg.LowStockThreshold),
	}

	for key, value := range defaults {
		var setting model.Setting
		err := DB.Where("key = ?", key).First(&setting).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := DB.Create(&model.Setting{Key: key, Value: value}).Error; err != nil {
			return err
		}
		logger.Debug("Seeded setting", map[string]interface{}{
			"key":   key,
			"value": value,
		})
	}
	return nil
}

func seedAdminUser() error {
	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := util.GenerateRandomPassword()
	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        "admin@parfumo.local",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	if err := DB.Create(admin).Error; err != nil {
		return err
	}

	// Printed once; the operator is expected to change this immediately.
	logger.Warn("Created initial admin account", map[string]interface{}{
		"email":    admin.Email,
		"password": password,
	})
	return nil
}
