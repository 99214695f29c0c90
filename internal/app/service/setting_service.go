package service

import (
	"errors"
	"strconv"

	"github.com/selhani/parfumo-backend/config"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/pricing"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrUnknownSetting  = errors.New("unknown setting key")
)

// StoreInfo is the public storefront identity block.
type StoreInfo struct {
	Name                  string  `json:"name"`
	Currency              string  `json:"currency"`
	WhatsAppNumber        string  `json:"whatsapp_number"`
	DeliveryFee           float64 `json:"delivery_fee"`
	FreeDeliveryThreshold float64 `json:"free_delivery_threshold"`
}

type SettingService interface {
	ListSettings() ([]model.Setting, error)
	GetSetting(key string) (*model.Setting, error)
	UpdateSetting(key, value string) error
	PricingRules() pricing.Rules
	StoreInfo() StoreInfo
	WhatsAppNumber() string
	Currency() string
	StoreName() string
}

type settingService struct {
	settingRepo repository.SettingRepository
	defaults    config.StoreConfig
}

func NewSettingService(settingRepo repository.SettingRepository, defaults config.StoreConfig) SettingService {
	return &settingService{
		settingRepo: settingRepo,
		defaults:    defaults,
	}
}

// knownKeys guards against typo'd keys becoming silent dead rows.
var knownKeys = map[string]struct{}{
	model.SettingStoreName:             {},
	model.SettingCurrency:              {},
	model.SettingWhatsAppNumber:        {},
	model.SettingDeliveryFee:           {},
	model.SettingFreeDeliveryThreshold: {},
	model.SettingLowStockThreshold:     {},
}

func (s *settingService) ListSettings() ([]model.Setting, error) {
	return s.settingRepo.FindAll()
}

func (s *settingService) GetSetting(key string) (*model.Setting, error) {
	setting, err := s.settingRepo.FindByKey(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return setting, nil
}

func (s *settingService) UpdateSetting(key, value string) error {
	if _, ok := knownKeys[key]; !ok {
		return ErrUnknownSetting
	}

	if err := s.settingRepo.Upsert(key, value); err != nil {
		return err
	}

	logger.Info("Setting updated", map[string]interface{}{
		"key":   key,
		"value": value,
	})
	return nil
}

// PricingRules reads the current rules from the settings table, falling back
// to the config defaults when a row is missing or malformed.
func (s *settingService) PricingRules() pricing.Rules {
	return pricing.Rules{
		FreeDeliveryThreshold: s.floatSetting(model.SettingFreeDeliveryThreshold, s.defaults.FreeDeliveryThreshold),
		DeliveryFee:           s.floatSetting(model.SettingDeliveryFee, s.defaults.DeliveryFee),
		LowStockThreshold:     s.intSetting(model.SettingLowStockThreshold, s.defaults.LowStockThreshold),
	}
}

func (s *settingService) StoreInfo() StoreInfo {
	rules := s.PricingRules()
	return StoreInfo{
		Name:                  s.StoreName(),
		Currency:              s.Currency(),
		WhatsAppNumber:        s.WhatsAppNumber(),
		DeliveryFee:           rules.DeliveryFee,
		FreeDeliveryThreshold: rules.FreeDeliveryThreshold,
	}
}

func (s *settingService) WhatsAppNumber() string {
	return s.stringSetting(model.SettingWhatsAppNumber, s.defaults.WhatsAppNumber)
}

func (s *settingService) Currency() string {
	return s.stringSetting(model.SettingCurrency, s.defaults.Currency)
}

func (s *settingService) StoreName() string {
	return s.stringSetting(model.SettingStoreName, s.defaults.Name)
}

func (s *settingService) stringSetting(key, fallback string) string {
	setting, err := s.settingRepo.FindByKey(key)
	if err != nil || setting.Value == "" {
		return fallback
	}
	return setting.Value
}

func (s *settingService) floatSetting(key string, fallback float64) float64 {
	setting, err := s.settingRepo.FindByKey(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		logger.Warn("Malformed numeric setting, using default", map[string]interface{}{
			"key":   key,
			"value": setting.Value,
		})
		return fallback
	}
	return v
}

func (s *settingService) intSetting(key string, fallback int) int {
	setting, err := s.settingRepo.FindByKey(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(setting.Value)
	if err != nil {
		logger.Warn("Malformed numeric setting, using default", map[string]interface{}{
			"key":   key,
			"value": setting.Value,
		})
		return fallback
	}
	return v
}
