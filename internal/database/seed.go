package database

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-bot/internal/config"
	"storefront-bot/internal/models"
)

// Seed inserts the default categories and settings on first run. Categories
// are inserted only if missing; settings are refreshed from the environment
// so .env changes take effect after a restart.
func Seed(db *gorm.DB, cfg *config.Config) error {
	defaultCategories := []models.Category{
		{ID: 1, Name: "Разное", Position: 1},
		{ID: 2, Name: "Гриф - Броня", Position: 2},
		{ID: 3, Name: "Гриф - Кит", Position: 3},
		{ID: 4, Name: "Гриф - Зелье", Position: 4},
		{ID: 5, Name: "Гриф - Инструменты", Position: 5},
		{ID: 6, Name: "Анархия - Броня", Position: 6},
		{ID: 7, Name: "Анархия - Кит", Position: 7},
		{ID: 8, Name: "Анархия - Зелье", Position: 8},
		{ID: 9, Name: "Анархия - Инструменты", Position: 9},
	}
	for _, cat := range defaultCategories {
		cat.IsActive = true
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cat).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
		}
	}

	defaultSettings := []models.Setting{
		{Key: models.SettingShopName, Value: "Мой магазин", Description: "Название магазина"},
		{Key: models.SettingWelcomeMessage, Value: "Добро пожаловать!", Description: "Приветственное сообщение"},
		{Key: models.SettingCurrency, Value: cfg.Currency, Description: "Валюта"},
		{Key: models.SettingMinDeposit, Value: strconv.FormatInt(cfg.MinDeposit, 10), Description: "Мин. сумма"},
		{Key: models.SettingMaxDeposit, Value: strconv.FormatInt(cfg.MaxDeposit, 10), Description: "Макс. сумма"},
		{Key: models.SettingReferralBonusNew, Value: strconv.FormatInt(cfg.ReferralBonusNew, 10), Description: "Бонус новому"},
		{Key: models.SettingReferralBonusInviter, Value: strconv.FormatInt(cfg.ReferralBonusInviter, 10), Description: "Бонус пригласившему"},
		{Key: models.SettingRefPercent, Value: strconv.FormatInt(cfg.RefPercent, 10), Description: "% с покупок реферала"},
		{Key: models.SettingAdminNotifications, Value: "1", Description: "Уведомления админам"},
		{Key: models.SettingMaintenanceMode, Value: "0", Description: "Режим техобслуживания"},
		{Key: models.SettingSupportContact, Value: "@" + cfg.AdminUsername, Description: "Контакты поддержки"},
		{Key: models.SettingTermsURL, Value: "", Description: "Правила"},
		{Key: models.SettingFAQURL, Value: "", Description: "FAQ"},
	}
	for _, setting := range defaultSettings {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
		}).Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to seed setting %q: %w", setting.Key, err)
		}
	}

	return nil
}
