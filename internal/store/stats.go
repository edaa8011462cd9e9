package store

import (
	"context"
	"time"

	"storefront-bot/internal/models"
)

// ShopStats is the aggregate snapshot behind the admin statistics screen.
type ShopStats struct {
	TotalUsers     int64
	ActiveUsers    int64
	BannedUsers    int64
	TotalBalance   int64
	TotalProducts  int64
	TotalOrders    int64
	TotalRevenue   int64
	TodayOrders    int64
	TodayRevenue   int64
	TotalReferrals int64
	RefEarnings    int64
}

func (s *Store) GetShopStats(ctx context.Context) (*ShopStats, error) {
	stats := &ShopStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := db.Model(&models.User{}).Where("last_active > ?", weekAgo).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("is_banned = ?", true).Count(&stats.BannedUsers).Error; err != nil {
		return nil, err
	}
	var balance *int64
	if err := db.Model(&models.User{}).Select("SUM(balance)").Scan(&balance).Error; err != nil {
		return nil, err
	}
	if balance != nil {
		stats.TotalBalance = *balance
	}
	if err := db.Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	var revenue *int64
	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).
		Select("SUM(amount)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		stats.TotalRevenue = *revenue
	}

	today := time.Now().Truncate(24 * time.Hour)
	if err := db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderStatusCompleted, today).
		Count(&stats.TodayOrders).Error; err != nil {
		return nil, err
	}
	var todayRevenue *int64
	if err := db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderStatusCompleted, today).
		Select("SUM(amount)").Scan(&todayRevenue).Error; err != nil {
		return nil, err
	}
	if todayRevenue != nil {
		stats.TodayRevenue = *todayRevenue
	}

	var refs, earnings *int64
	if err := db.Model(&models.User{}).Select("SUM(total_referrals)").Scan(&refs).Error; err != nil {
		return nil, err
	}
	if refs != nil {
		stats.TotalReferrals = *refs
	}
	if err := db.Model(&models.User{}).Select("SUM(referral_earnings)").Scan(&earnings).Error; err != nil {
		return nil, err
	}
	if earnings != nil {
		stats.RefEarnings = *earnings
	}
	return stats, nil
}

type DailySales struct {
	Day     string
	Orders  int64
	Revenue int64
}

func (s *Store) SalesByDay(ctx context.Context, days int) ([]DailySales, error) {
	start := time.Now().AddDate(0, 0, -days)
	var rows []DailySales
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("DATE(created_at) AS day, COUNT(*) AS orders, SUM(amount) AS revenue").
		Where("status = ? AND created_at >= ?", models.OrderStatusCompleted, start).
		Group("DATE(created_at)").Order("day").
		Scan(&rows).Error
	return rows, err
}

type DailyCount struct {
	Day   string
	Count int64
}

func (s *Store) RegistrationsByDay(ctx context.Context, days int) ([]DailyCount, error) {
	start := time.Now().AddDate(0, 0, -days)
	var rows []DailyCount
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", start).
		Group("DATE(created_at)").Order("day").
		Scan(&rows).Error
	return rows, err
}

type ProductSales struct {
	Name    string
	Sales   int64
	Revenue int64
}

func (s *Store) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductSales
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("product_name AS name, COUNT(*) AS sales, SUM(amount) AS revenue").
		Where("status = ?", models.OrderStatusCompleted).
		Group("product_name").Order("sales DESC").Limit(limit).
		Scan(&rows).Error
	return rows, err
}
