package models

import (
	"time"
)

type Promocode struct {
	ID              uint   `gorm:"primaryKey"`
	Code            string `gorm:"uniqueIndex;not null"`
	Amount          int64  `gorm:"not null"`
	DiscountPercent int    `gorm:"not null;default:0"`
	MinOrder        int64  `gorm:"not null;default:0"`
	// No default tag: GORM omits zero-valued fields that carry one, and an
	// explicit 0 (unlimited) must round-trip.
	MaxUses   int `gorm:"not null"` // 0 = unlimited
	UsedCount       int    `gorm:"not null;default:0"`
	// Reserved for per-user redemption tracking; the schema carries it but
	// redemption only enforces the global use counter.
	UserIDs   string `gorm:"size:2048;default:''"`
	IsActive  bool   `gorm:"not null;default:true"`
	ExpiresAt *time.Time
	CreatedBy int64
	CreatedAt time.Time
}

// Expired reports whether the code's expiry (if any) has passed.
func (p *Promocode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// Exhausted reports whether the use limit (if any) has been reached.
func (p *Promocode) Exhausted() bool {
	return p.MaxUses > 0 && p.UsedCount >= p.MaxUses
}
