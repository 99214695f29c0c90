package service

import (
	"testing"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSettingServiceTest(t *testing.T) (SettingService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	settingRepo := repository.NewSettingRepository(testDB)
	return NewSettingService(settingRepo, testStoreDefaults), testDB
}

func TestSettingService_PricingRules_Defaults(t *testing.T) {
	settingService, _ := setupSettingServiceTest(t)

	rules := settingService.PricingRules()
	assert.Equal(t, float64(30), rules.DeliveryFee)
	assert.Equal(t, float64(500), rules.FreeDeliveryThreshold)
	assert.Equal(t, 5, rules.LowStockThreshold)
}

func TestSettingService_PricingRules_RowsOverrideDefaults(t *testing.T) {
	settingService, testDB := setupSettingServiceTest(t)

	testDB.Create(&model.Setting{Key: model.SettingDeliveryFee, Value: "50"})
	testDB.Create(&model.Setting{Key: model.SettingFreeDeliveryThreshold, Value: "800"})

	rules := settingService.PricingRules()
	assert.Equal(t, float64(50), rules.DeliveryFee)
	assert.Equal(t, float64(800), rules.FreeDeliveryThreshold)
	assert.Equal(t, 5, rules.LowStockThreshold) // still the default
}

func TestSettingService_PricingRules_BadValueFallsBack(t *testing.T) {
	settingService, testDB := setupSettingServiceTest(t)

	testDB.Create(&model.Setting{Key: model.SettingDeliveryFee, Value: "not-a-number"})

	rules := settingService.PricingRules()
	assert.Equal(t, float64(30), rules.DeliveryFee)
}

func TestSettingService_UpdateSetting_KnownKey(t *testing.T) {
	settingService, _ := setupSettingServiceTest(t)

	require.NoError(t, settingService.UpdateSetting(model.SettingWhatsAppNumber, "+212699999999"))
	assert.Equal(t, "+212699999999", settingService.WhatsAppNumber())

	// Upsert replaces, never duplicates
	require.NoError(t, settingService.UpdateSetting(model.SettingWhatsAppNumber, "+212688888888"))
	assert.Equal(t, "+212688888888", settingService.WhatsAppNumber())
}

func TestSettingService_UpdateSetting_UnknownKey(t *testing.T) {
	settingService, _ := setupSettingServiceTest(t)

	err := settingService.UpdateSetting("typo_key", "value")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}

func TestSettingService_StoreInfo(t *testing.T) {
	settingService, testDB := setupSettingServiceTest(t)

	testDB.Create(&model.Setting{Key: model.SettingStoreName, Value: "Parfumo Maroc"})

	info := settingService.StoreInfo()
	assert.Equal(t, "Parfumo Maroc", info.Name)
	assert.Equal(t, "MAD", info.Currency)
	assert.Equal(t, float64(30), info.DeliveryFee)
	assert.Equal(t, float64(500), info.FreeDeliveryThreshold)
}
