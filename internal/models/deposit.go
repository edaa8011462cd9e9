package models

import (
	"time"
)

const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusRejected  = "rejected"
)

// DepositRequest is a manually confirmed top-up: the user states an amount,
// an admin approves or rejects it. The balance is credited only on approval.
type DepositRequest struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     int64  `gorm:"not null;index"`
	Amount     int64  `gorm:"not null"`
	Status     string `gorm:"size:16;default:'pending';index"`
	ResolvedBy *int64
	ResolvedAt *time.Time
	CreatedAt  time.Time
}
