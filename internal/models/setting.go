package models

import (
	"time"
)

type Setting struct {
	Key         string `gorm:"primaryKey"`
	Value       string `gorm:"not null"`
	Description string `gorm:"size:255"`
	UpdatedAt   time.Time
}

// Well-known setting keys seeded at first run.
const (
	SettingShopName           = "shop_name"
	SettingWelcomeMessage     = "welcome_message"
	SettingCurrency           = "currency"
	SettingMinDeposit         = "min_deposit"
	SettingMaxDeposit         = "max_deposit"
	SettingReferralBonusNew   = "referral_bonus_new"
	SettingReferralBonusInviter = "referral_bonus_inviter"
	SettingRefPercent         = "ref_percent"
	SettingAdminNotifications = "admin_notifications"
	SettingMaintenanceMode    = "maintenance_mode"
	SettingSupportContact     = "support_contact"
	SettingTermsURL           = "terms_url"
	SettingFAQURL             = "faq_url"
)
