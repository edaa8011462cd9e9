package models

import (
	"time"
)

// User balances are kept in integer minor currency units. Rows are never
// deleted; banning only flips the flag.
type User struct {
	TelegramID       int64  `gorm:"primaryKey"`
	Username         string `gorm:"size:255"`
	FirstName        string `gorm:"size:255"`
	Balance          int64  `gorm:"not null;default:0;index"`
	TotalDeposited   int64  `gorm:"not null;default:0"`
	TotalSpent       int64  `gorm:"not null;default:0"`
	ReferralCode     string `gorm:"size:6;uniqueIndex"`
	ReferredBy       *int64 `gorm:"index"`
	TotalReferrals   int    `gorm:"not null;default:0"`
	ReferralEarnings int64  `gorm:"not null;default:0"`
	IsBanned         bool   `gorm:"not null;default:false"`
	BanReason        string `gorm:"size:512"`
	BannedAt         *time.Time
	BannedBy         *int64
	IsTester         bool `gorm:"not null;default:false"`
	TestedProducts   int  `gorm:"not null;default:0"`
	LastActive       time.Time
	LastPurchase     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
