package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

func (s *Store) CreateDepositRequest(ctx context.Context, userID, amount int64) (*models.DepositRequest, error) {
	req := &models.DepositRequest{
		ID:     uuid.NewString(),
		UserID: userID,
		Amount: amount,
		Status: models.DepositStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Store) GetDepositRequest(ctx context.Context, id string) (*models.DepositRequest, error) {
	var req models.DepositRequest
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ConfirmDeposit flips a pending request to confirmed and credits the
// balance in one transaction. The pending->confirmed transition is a
// compare-and-swap, so a request can be resolved at most once.
func (s *Store) ConfirmDeposit(ctx context.Context, id string, adminID int64) (*models.DepositRequest, error) {
	var req models.DepositRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.DepositRequest{}).
			Where("id = ? AND status = ?", id, models.DepositStatusPending).
			Updates(map[string]interface{}{
				"status":      models.DepositStatusConfirmed,
				"resolved_by": adminID,
				"resolved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDepositResolved
		}

		credit := tx.Model(&models.User{}).
			Where("telegram_id = ?", req.UserID).
			Updates(map[string]interface{}{
				"balance":         gorm.Expr("balance + ?", req.Amount),
				"total_deposited": gorm.Expr("total_deposited + ?", req.Amount),
			})
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return ErrNotFound
		}

		req.Status = models.DepositStatusConfirmed
		req.ResolvedBy = &adminID
		req.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RejectDeposit resolves a pending request without crediting anything.
func (s *Store) RejectDeposit(ctx context.Context, id string, adminID int64) (*models.DepositRequest, error) {
	var req models.DepositRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.DepositRequest{}).
			Where("id = ? AND status = ?", id, models.DepositStatusPending).
			Updates(map[string]interface{}{
				"status":      models.DepositStatusRejected,
				"resolved_by": adminID,
				"resolved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDepositResolved
		}

		req.Status = models.DepositStatusRejected
		req.ResolvedBy = &adminID
		req.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
