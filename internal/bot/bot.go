package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"storefront-bot/internal/admin"
	"storefront-bot/internal/config"
	"storefront-bot/internal/ledger"
	"storefront-bot/internal/models"
	"storefront-bot/internal/promo"
	"storefront-bot/internal/session"
	"storefront-bot/internal/store"
)

type Bot struct {
	Instance *telego.Bot
	Store    *store.Store
	Promo    *promo.Service
	Ledger   *ledger.Service
	Sessions *session.Manager
	Admins   *admin.Cache
	Testers  *admin.Cache
	Audit    *admin.AuditLog
	Cfg      *config.Config
}

func NewBot(cfg *config.Config, s *store.Store, promoSvc *promo.Service, ledgerSvc *ledger.Service, audit *admin.AuditLog) (*Bot, error) {
	tgBot, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance: tgBot,
		Store:    s,
		Promo:    promoSvc,
		Ledger:   ledgerSvc,
		Sessions: session.NewManager(s),
		Admins:   admin.NewCache(cfg.AdminID),
		Testers:  admin.NewCache(),
		Audit:    audit,
		Cfg:      cfg,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create bot handler: %w", err)
	}

	// Commands
	handler.Handle(b.guard("start", b.handleStart), th.CommandEqual("start"))
	handler.Handle(b.guard("help", b.handleHelp), th.CommandEqual("help"))
	handler.Handle(b.guard("admin", b.handleAdminCommand), th.CommandEqual("admin"))
	handler.Handle(b.guard("addpromo", b.handleAddPromo), th.CommandEqual("addpromo"))
	handler.Handle(b.guard("smartpromo", b.handleSmartPromo), th.CommandEqual("smartpromo"))
	handler.Handle(b.guard("delpromo", b.handleDelPromo), th.CommandEqual("delpromo"))
	handler.Handle(b.guard("grant", b.handleGrant), th.CommandEqual("grant"))
	handler.Handle(b.guard("ban", b.handleBan), th.CommandEqual("ban"))
	handler.Handle(b.guard("unban", b.handleUnban), th.CommandEqual("unban"))
	handler.Handle(b.guard("setsetting", b.handleSetSetting), th.CommandEqual("setsetting"))
	handler.Handle(b.guard("addcategory", b.handleAddCategory), th.CommandEqual("addcategory"))
	handler.Handle(b.guard("delcategory", b.handleDelCategory), th.CommandEqual("delcategory"))
	handler.Handle(b.guard("addproduct", b.handleAddProduct), th.CommandEqual("addproduct"))
	handler.Handle(b.guard("delproduct", b.handleDelProduct), th.CommandEqual("delproduct"))
	handler.Handle(b.guard("setstock", b.handleSetStock), th.CommandEqual("setstock"))

	// User menu callbacks
	handler.Handle(b.guard("main_menu", b.handleMainMenu), th.CallbackDataEqual("main_menu"))
	handler.Handle(b.guard("shop", b.handleShop), th.CallbackDataEqual("shop"))
	handler.Handle(b.guard("shop_cat", b.handleShopCategory), th.CallbackDataPrefix("shop_cat_"))
	handler.Handle(b.guard("product", b.handleProduct), th.CallbackDataPrefix("product_"))
	handler.Handle(b.guard("buy", b.handleBuy), th.CallbackDataPrefix("buy_"))
	handler.Handle(b.guard("balance", b.handleBalance), th.CallbackDataEqual("balance"))
	handler.Handle(b.guard("topup", b.handleTopUp), th.CallbackDataEqual("topup"))
	handler.Handle(b.guard("profile", b.handleProfile), th.CallbackDataEqual("profile"))
	handler.Handle(b.guard("promo", b.handlePromoRedeem), th.CallbackDataEqual("promo"))
	handler.Handle(b.guard("referrals", b.handleReferrals), th.CallbackDataEqual("referrals"))
	handler.Handle(b.guard("my_orders", b.handleMyOrders), th.CallbackDataEqual("my_orders"))
	handler.Handle(b.guard("support", b.handleSupport), th.CallbackDataEqual("support"))
	handler.Handle(b.guard("help_cb", b.handleHelpCallback), th.CallbackDataEqual("help"))
	handler.Handle(b.guard("cancel", b.handleCancel), th.CallbackDataEqual("cancel"))

	// Admin panel callbacks
	handler.Handle(b.guard("admin_panel", b.handleAdminPanel), th.CallbackDataEqual("admin_panel"))
	handler.Handle(b.guard("admin_stats", b.handleAdminStats), th.CallbackDataEqual("admin_stats"))
	handler.Handle(b.guard("admin_promos", b.handleAdminPromos), th.CallbackDataEqual("admin_promos"))
	handler.Handle(b.guard("admin_promo_custom", b.handlePromoCustomFlow), th.CallbackDataEqual("admin_promo_custom"))
	handler.Handle(b.guard("admin_promo_full", b.handlePromoFullFlow), th.CallbackDataEqual("admin_promo_full"))
	handler.Handle(b.guard("admin_promo_smart", b.handlePromoSmart), th.CallbackDataEqual("admin_promo_smart"))
	handler.Handle(b.guard("admin_chart_sales", b.handleChartSales), th.CallbackDataEqual("admin_chart_sales"))
	handler.Handle(b.guard("admin_chart_users", b.handleChartUsers), th.CallbackDataEqual("admin_chart_users"))
	handler.Handle(b.guard("admin_chart_top", b.handleChartTop), th.CallbackDataEqual("admin_chart_top"))
	handler.Handle(b.guard("admin_settings", b.handleAdminSettings), th.CallbackDataEqual("admin_settings"))
	handler.Handle(b.guard("dep_ok", b.handleDepositConfirm), th.CallbackDataPrefix("dep_ok_"))
	handler.Handle(b.guard("dep_no", b.handleDepositReject), th.CallbackDataPrefix("dep_no_"))

	// Free text goes to the active dialogue session.
	handler.Handle(b.guard("text", b.handleText), th.AnyMessageWithText())

	return handler.Start()
}

// guard wraps a handler so that panics and returned errors are logged and
// answered with a generic failure instead of killing the update loop.
func (b *Bot) guard(name string, fn th.Handler) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("Handler panic",
					zap.String("handler", name),
					zap.Any("panic", r))
				b.replyGeneric(ctx, update)
			}
		}()
		if err := fn(ctx, update); err != nil {
			zap.L().Error("Handler failed",
				zap.String("handler", name),
				zap.Error(err))
			b.replyGeneric(ctx, update)
		}
		return nil
	}
}

func (b *Bot) replyGeneric(ctx *th.Context, update telego.Update) {
	chatID := chatIDOf(update)
	if chatID == 0 {
		return
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(chatID), "❌ Что-то пошло не так. Попробуйте ещё раз позже.",
	))
}

func chatIDOf(update telego.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// isAdmin checks the cached admin set first, then the configured username
// and the stored tester flag, caching confirmations. Bans invalidate the
// caches.
func (b *Bot) isAdmin(ctx context.Context, userID int64, username string) bool {
	if b.Admins.Contains(userID) || b.Testers.Contains(userID) {
		return true
	}
	if username != "" && strings.EqualFold(username, b.Cfg.AdminUsername) {
		b.Admins.Confirm(userID)
		return true
	}
	if username != "" && b.Cfg.TesterUsername != "" && strings.EqualFold(username, b.Cfg.TesterUsername) {
		b.Testers.Confirm(userID)
		return true
	}
	user, err := b.Store.GetUser(ctx, userID)
	if err != nil {
		return false
	}
	if user.IsBanned {
		return false
	}
	if strings.EqualFold(user.Username, b.Cfg.AdminUsername) {
		b.Admins.Confirm(userID)
		return true
	}
	if user.IsTester {
		b.Testers.Confirm(userID)
		return true
	}
	return false
}

func (b *Bot) currency(ctx context.Context) string {
	symbol, err := b.Store.GetSetting(ctx, models.SettingCurrency)
	if err != nil || symbol == "" {
		return b.Cfg.Currency
	}
	return symbol
}

// formatPrice renders an amount with thin thousand separators and the
// runtime currency symbol, e.g. "1 500₪".
func (b *Bot) formatPrice(ctx context.Context, amount int64) string {
	return formatThousands(amount) + b.currency(ctx)
}

func formatThousands(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, " ")
	if neg {
		out = "-" + out
	}
	return out
}
