package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

func (s *Store) CreatePromocode(ctx context.Context, promo *models.Promocode) error {
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	return s.db.WithContext(ctx).Create(promo).Error
}

// PromoCodeExists reports whether any promocode row, active or not, carries
// the code. Generation must verify uniqueness before accepting a candidate.
func (s *Store) PromoCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Promocode{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) GetPromocode(ctx context.Context, code string) (*models.Promocode, error) {
	var promo models.Promocode
	err := s.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (s *Store) ListPromocodes(ctx context.Context, limit int) ([]models.Promocode, error) {
	if limit <= 0 {
		limit = 50
	}
	var promos []models.Promocode
	err := s.db.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Find(&promos).Error
	return promos, err
}

func (s *Store) DeactivatePromocode(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).Model(&models.Promocode{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPromoNotFound
	}
	return nil
}

// RedeemPromocode validates and redeems a code for the user in one
// transaction. The use counter increment is guarded by
// "max_uses = 0 OR used_count < max_uses" and checked via affected rows, so
// two concurrent redemptions of a single-use code cannot both succeed. The
// counter increment and the balance credit either both apply or neither
// does.
func (s *Store) RedeemPromocode(ctx context.Context, rawCode string, userID int64) (*models.Promocode, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	var promo models.Promocode

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("code = ? AND is_active = ?", code, true).First(&promo).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromoNotFound
		}
		if err != nil {
			return err
		}

		if promo.Expired(time.Now()) {
			return ErrPromoExpired
		}
		if promo.Exhausted() {
			return ErrPromoExhausted
		}

		res := tx.Model(&models.Promocode{}).
			Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", promo.ID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPromoExhausted
		}

		credit := tx.Model(&models.User{}).
			Where("telegram_id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", promo.Amount))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return ErrNotFound
		}

		promo.UsedCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// ExpirePromocodes deactivates every active code whose expiry has passed
// and returns the affected rows. Used by the hourly sweeper.
func (s *Store) ExpirePromocodes(ctx context.Context, now time.Time) ([]models.Promocode, error) {
	var expired []models.Promocode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(expired))
		for _, p := range expired {
			ids = append(ids, p.ID)
		}
		return tx.Model(&models.Promocode{}).
			Where("id IN ?", ids).
			Update("is_active", false).Error
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
