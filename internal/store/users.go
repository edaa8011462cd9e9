package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

func (s *Store) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterParams describes a first-contact signup.
type RegisterParams struct {
	TelegramID   int64
	Username     string
	FirstName    string
	ReferralCode string // the new user's own code, pre-generated unique
	InviterCode  string // optional deep-link argument

	BonusNew     int64
	BonusInviter int64
}

// RegisterUser creates the user row on first contact and applies the
// referral bonuses at most once, guarded by the absence of an existing row.
// Repeat calls only refresh the username and activity timestamp. Returns
// the user and whether the row was created by this call.
func (s *Store) RegisterUser(ctx context.Context, p RegisterParams) (*models.User, bool, error) {
	var user models.User
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("telegram_id = ?", p.TelegramID).First(&user).Error
		if err == nil {
			return tx.Model(&user).Updates(map[string]interface{}{
				"username":    p.Username,
				"first_name":  p.FirstName,
				"last_active": time.Now(),
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user = models.User{
			TelegramID:   p.TelegramID,
			Username:     p.Username,
			FirstName:    p.FirstName,
			ReferralCode: p.ReferralCode,
			LastActive:   time.Now(),
		}

		var inviter *models.User
		if p.InviterCode != "" && p.InviterCode != p.ReferralCode {
			var candidate models.User
			lookupErr := tx.Where("referral_code = ?", p.InviterCode).First(&candidate).Error
			if lookupErr == nil && candidate.TelegramID != p.TelegramID {
				inviter = &candidate
			}
		}

		if inviter != nil {
			user.ReferredBy = &inviter.TelegramID
			user.Balance = p.BonusNew
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created = true

		if inviter != nil {
			return tx.Model(&models.User{}).
				Where("telegram_id = ?", inviter.TelegramID).
				Updates(map[string]interface{}{
					"balance":           gorm.Expr("balance + ?", p.BonusInviter),
					"total_referrals":   gorm.Expr("total_referrals + 1"),
					"referral_earnings": gorm.Expr("referral_earnings + ?", p.BonusInviter),
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &user, created, nil
}

// CreditBalance unconditionally adds amount to the user's balance and, when
// deposit is true, to the lifetime deposited total.
func (s *Store) CreditBalance(ctx context.Context, telegramID, amount int64, deposit bool) error {
	updates := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
	}
	if deposit {
		updates["total_deposited"] = gorm.Expr("total_deposited + ?", amount)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) BanUser(ctx context.Context, telegramID, adminID int64, reason string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"is_banned":  true,
			"ban_reason": reason,
			"banned_at":  now,
			"banned_by":  adminID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UnbanUser(ctx context.Context, telegramID int64) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"is_banned":  false,
			"ban_reason": "",
			"banned_at":  nil,
			"banned_by":  nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastActive(ctx context.Context, telegramID int64) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("last_active", time.Now()).Error
}

// ReferralCodeExists is used by code generation for rejection sampling.
func (s *Store) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("referral_code = ?", code).Count(&count).Error
	return count > 0, err
}

// CountActiveUsersSince counts users active after the cutoff; feeds the
// smart-promo use-limit inference.
func (s *Store) CountActiveUsersSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("last_active > ?", cutoff).Count(&count).Error
	return count, err
}

func (s *Store) CountReferrals(ctx context.Context, telegramID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("referred_by = ?", telegramID).Count(&count).Error
	return count, err
}
