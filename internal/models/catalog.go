package models

import (
	"time"
)

type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Position  int    `gorm:"not null;default:0"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// Stock of -1 means unlimited; a finite stock is decremented on purchase
// and never goes below zero.
type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:2048"`
	Price       int64  `gorm:"not null"`
	CategoryID  uint   `gorm:"not null;default:1;index:idx_products_category"`
	// No default tag: a zero stock written through GORM must stay 0, not
	// fall back to the unlimited sentinel. Callers set -1 explicitly.
	Stock       int    `gorm:"not null"`
	IsActive    bool   `gorm:"not null;default:true;index:idx_products_category"`
	ImagePath   string `gorm:"size:512"`
	Position    int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
}
