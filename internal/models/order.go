package models

import (
	"time"
)

const OrderStatusCompleted = "completed"

// Order rows are append-only snapshots: name and amount are captured at
// purchase time and stay immutable even if the product changes later.
type Order struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      int64  `gorm:"not null;index:idx_orders_user_date"`
	ProductID   uint   `gorm:"not null"`
	ProductName string `gorm:"size:255;not null"`
	Quantity    int    `gorm:"not null;default:1"`
	Amount      int64  `gorm:"not null"`
	Status      string `gorm:"size:32;default:'completed';index"`
	Details     string `gorm:"size:1024"`
	CreatedAt   time.Time `gorm:"index:idx_orders_user_date"`
}
