package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

// PurchaseProduct performs the whole purchase as one transaction: finite
// stock decrement guarded by "stock > 0", balance debit guarded by
// "balance >= price", order insert, and the optional inviter percentage
// credit. A failed guard rolls the entire unit back, so stock can never be
// decremented without a recorded order and the balance can never go
// negative.
func (s *Store) PurchaseProduct(ctx context.Context, userID int64, productID uint, refPercent int64) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.Where("id = ? AND is_active = ?", productID, true).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if product.Stock == 0 {
			return ErrOutOfStock
		}

		var buyer models.User
		err = tx.Where("telegram_id = ?", userID).First(&buyer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if buyer.IsBanned {
			return ErrUserBanned
		}

		if product.Stock > 0 {
			dec := tx.Model(&models.Product{}).
				Where("id = ? AND stock > 0", product.ID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if dec.Error != nil {
				return dec.Error
			}
			if dec.RowsAffected == 0 {
				return ErrOutOfStock
			}
		}

		now := time.Now()
		debit := tx.Model(&models.User{}).
			Where("telegram_id = ? AND balance >= ?", userID, product.Price).
			Updates(map[string]interface{}{
				"balance":       gorm.Expr("balance - ?", product.Price),
				"total_spent":   gorm.Expr("total_spent + ?", product.Price),
				"last_purchase": now,
				"last_active":   now,
			})
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		order = models.Order{
			UserID:      userID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    1,
			Amount:      product.Price,
			Status:      models.OrderStatusCompleted,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Percentage kickback to the inviter on every referral purchase.
		if buyer.ReferredBy != nil && refPercent > 0 {
			bonus := product.Price * refPercent / 100
			if bonus > 0 {
				if err := tx.Model(&models.User{}).
					Where("telegram_id = ?", *buyer.ReferredBy).
					Updates(map[string]interface{}{
						"balance":           gorm.Expr("balance + ?", bonus),
						"referral_earnings": gorm.Expr("referral_earnings + ?", bonus),
					}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&orders).Error
	return orders, err
}

// AverageOrderAmount returns the mean amount of completed orders, feeding
// the smart-promo amount inference. Zero when no orders exist.
func (s *Store) AverageOrderAmount(ctx context.Context) (int64, error) {
	var avg *float64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("AVG(amount)").Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return int64(*avg), nil
}
