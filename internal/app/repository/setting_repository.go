package repository

import (
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	FindAll() ([]model.Setting, error)
	FindByKey(key string) (*model.Setting, error)
	Upsert(key, value string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) FindAll() ([]model.Setting, error) {
	var settings []model.Setting
	if err := r.db.Order("key ASC").Find(&settings).Error; err != nil {
		logger.Error("Failed to list settings", err, nil)
		return nil, err
	}
	return settings, nil
}

func (r *settingRepository) FindByKey(key string) (*model.Setting, error) {
	var setting model.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepository) Upsert(key, value string) error {
	setting := model.Setting{Key: key, Value: value}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error; err != nil {
		logger.Error("Failed to upsert setting in database", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}
