package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront-bot/internal/admin"
	"storefront-bot/internal/bot"
	"storefront-bot/internal/config"
	"storefront-bot/internal/database"
	"storefront-bot/internal/ledger"
	"storefront-bot/internal/promo"
	"storefront-bot/internal/store"
	"storefront-bot/internal/worker"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.LoadConfig()

	db, err := database.ConnectSQLite(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}

	audit, err := admin.NewAuditLog(cfg.AuditLogFile)
	if err != nil {
		zap.L().Fatal("Failed to open audit log", zap.Error(err))
	}
	defer audit.Close()

	st := store.NewStore(db)
	promoSvc := promo.NewService(st)
	ledgerSvc := ledger.NewService(st, cfg)

	tgBot, err := bot.NewBot(cfg, st, promoSvc, ledgerSvc, audit)
	if err != nil {
		zap.L().Fatal("Failed to create bot", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sweeper := worker.NewSweeper(st, rdb, tgBot.Instance, cfg.AdminID)
	go sweeper.Start(ctx)

	zap.L().Info("Bot starting")
	if err := tgBot.Start(ctx); err != nil {
		zap.L().Fatal("Bot stopped with error", zap.Error(err))
	}
}
