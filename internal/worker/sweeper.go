package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront-bot/internal/store"
)

// Sweeper runs the hourly maintenance cycle: it deactivates expired
// promocodes and alerts admins about sold-out products. Redis keys with a
// TTL dedupe the notifications across cycles and restarts.
type Sweeper struct {
	Store   *store.Store
	Redis   *redis.Client
	Bot     *telego.Bot
	AdminID int64
}

func NewSweeper(s *store.Store, rdb *redis.Client, bot *telego.Bot, adminID int64) *Sweeper {
	return &Sweeper{
		Store:   s,
		Redis:   rdb,
		Bot:     bot,
		AdminID: adminID,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	zap.L().Info("Background sweeper started")

	// Run once at start
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Background sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	zap.L().Debug("Running sweep cycle")

	expired, err := s.Store.ExpirePromocodes(ctx, time.Now())
	if err != nil {
		zap.L().Error("Failed to expire promocodes", zap.Error(err))
	}
	for _, promo := range expired {
		if promo.CreatedBy == 0 {
			continue
		}
		key := fmt.Sprintf("promo_expired_notify_%d", promo.ID)
		exists, _ := s.Redis.Exists(ctx, key).Result()
		if exists != 0 {
			continue
		}
		_, err := s.Bot.SendMessage(ctx, tu.Message(
			tu.ID(promo.CreatedBy),
			fmt.Sprintf("⏰ Промокод <code>%s</code> истёк и деактивирован (использован %d раз).", promo.Code, promo.UsedCount),
		).WithParseMode(telego.ModeHTML))
		if err == nil {
			s.Redis.Set(ctx, key, "true", 48*time.Hour)
			zap.L().Info("Expired promocode deactivated", zap.String("code", promo.Code))
		} else {
			zap.L().Error("Failed to notify promo creator", zap.String("code", promo.Code), zap.Error(err))
		}
	}

	if s.AdminID == 0 {
		return
	}
	soldOut, err := s.Store.SoldOutProducts(ctx)
	if err != nil {
		zap.L().Error("Failed to query sold-out products", zap.Error(err))
		return
	}
	for _, product := range soldOut {
		key := fmt.Sprintf("stock_notify_%d", product.ID)
		exists, _ := s.Redis.Exists(ctx, key).Result()
		if exists != 0 {
			continue
		}
		_, err := s.Bot.SendMessage(ctx, tu.Message(
			tu.ID(s.AdminID),
			fmt.Sprintf("📦 Товар «%s» закончился на складе.", product.Name),
		))
		if err == nil {
			s.Redis.Set(ctx, key, "true", 48*time.Hour)
		} else {
			zap.L().Error("Failed to send stock notification", zap.Uint("product_id", product.ID), zap.Error(err))
		}
	}
}
