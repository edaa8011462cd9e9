package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"storefront-bot/internal/models"
	"storefront-bot/internal/session"
	"storefront-bot/internal/store"
)

func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	message := update.Message
	from := message.From

	// Deep-link argument carries the inviter's referral code.
	inviterCode := ""
	if parts := strings.SplitN(message.Text, " ", 2); len(parts) > 1 {
		inviterCode = strings.TrimSpace(parts[1])
	}

	user, created, err := b.Ledger.RegisterUser(ctx.Context(), from.ID, from.Username, from.FirstName, inviterCode)
	if err != nil {
		return fmt.Errorf("register user %d: %w", from.ID, err)
	}
	if user.IsBanned {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			fmt.Sprintf("🚫 Вы заблокированы.\nПричина: %s", user.BanReason),
		))
		return nil
	}

	if b.maintenanceOn(ctx, from.ID, from.Username) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "🔧 Магазин на техобслуживании. Загляните позже.",
		))
		return nil
	}

	shopName, _ := b.Store.GetSetting(ctx.Context(), models.SettingShopName)
	welcome, _ := b.Store.GetSetting(ctx.Context(), models.SettingWelcomeMessage)
	text := fmt.Sprintf("%s\n\n<b>%s</b>, %s", shopName, from.FirstName, welcome)

	if created && user.ReferredBy != nil {
		bonus := b.Store.GetSettingInt(ctx.Context(), models.SettingReferralBonusNew, b.Cfg.ReferralBonusNew)
		text += fmt.Sprintf("\n\n🎁 Вам начислен бонус за регистрацию по приглашению: %s", b.formatPrice(ctx.Context(), bonus))

		inviterBonus := b.Store.GetSettingInt(ctx.Context(), models.SettingReferralBonusInviter, b.Cfg.ReferralBonusInviter)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(*user.ReferredBy),
			fmt.Sprintf("🤝 По вашей ссылке зарегистрировался новый пользователь! Бонус: %s", b.formatPrice(ctx.Context(), inviterBonus)),
		))
	}

	_, err = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text).
		WithParseMode(telego.ModeHTML).
		WithReplyMarkup(b.mainMenuKeyboard(ctx.Context(), from.ID, from.Username)))
	return err
}

func (b *Bot) handleHelp(ctx *th.Context, update telego.Update) error {
	support, _ := b.Store.GetSetting(ctx.Context(), models.SettingSupportContact)
	text := "ℹ️ <b>Как пользоваться ботом:</b>\n\n" +
		"1. Пополните баланс через «💰 Баланс».\n" +
		"2. Выберите товар в «🛍️ Магазин» и оплатите с баланса.\n" +
		"3. Активируйте промокоды в «🎫 Промокод».\n" +
		"4. Приглашайте друзей и получайте бонусы.\n\n" +
		"Поддержка: " + support
	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(update.Message.Chat.ID), text).
		WithParseMode(telego.ModeHTML))
	return err
}

func (b *Bot) handleHelpCallback(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	support, _ := b.Store.GetSetting(ctx.Context(), models.SettingSupportContact)
	text := "ℹ️ <b>Как пользоваться ботом:</b>\n\n" +
		"1. Пополните баланс через «💰 Баланс».\n" +
		"2. Выберите товар в «🛍️ Магазин» и оплатите с баланса.\n" +
		"3. Активируйте промокоды в «🎫 Промокод».\n" +
		"4. Приглашайте друзей и получайте бонусы.\n\n" +
		"Поддержка: " + support
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(backToMenuKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleMainMenu(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	b.Sessions.Cancel(callback.From.ID)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "Главное меню:").
		WithReplyMarkup(b.mainMenuKeyboard(ctx.Context(), callback.From.ID, callback.From.Username)))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleShop(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery

	if b.maintenanceOn(ctx, callback.From.ID, callback.From.Username) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(callback.From.ID), "🔧 Магазин на техобслуживании. Загляните позже.",
		))
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	categories, err := b.Store.ListCategories(ctx.Context(), true)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "🛍️ Выберите категорию:").
		WithReplyMarkup(b.categoriesKeyboard(categories)))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleShopCategory(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	id, err := strconv.ParseUint(strings.TrimPrefix(callback.Data, "shop_cat_"), 10, 64)
	if err != nil {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	products, err := b.Store.ListProducts(ctx.Context(), uint(id), true)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "В этой категории пока пусто.").
			WithReplyMarkup(backToMenuKeyboard()))
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "📦 Товары:").
		WithReplyMarkup(b.productsKeyboard(ctx.Context(), products)))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleProduct(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	id, err := strconv.ParseUint(strings.TrimPrefix(callback.Data, "product_"), 10, 64)
	if err != nil {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	product, err := b.Store.GetProduct(ctx.Context(), uint(id))
	if errors.Is(err, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "❌ Товар не найден."))
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	stock := "не ограничен"
	if product.Stock >= 0 {
		stock = strconv.Itoa(product.Stock) + " шт."
	}
	text := fmt.Sprintf("<b>%s</b>\n\n%s\n\n💰 Цена: %s\n📦 Остаток: %s",
		product.Name, product.Description, b.formatPrice(ctx.Context(), product.Price), stock)

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🛒 Купить").WithCallbackData(fmt.Sprintf("buy_%d", product.ID)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« Назад").WithCallbackData(fmt.Sprintf("shop_cat_%d", product.CategoryID)),
		),
	)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(keyboard))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleBuy(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	telegramID := callback.From.ID
	id, err := strconv.ParseUint(strings.TrimPrefix(callback.Data, "buy_"), 10, 64)
	if err != nil {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	order, err := b.Ledger.Purchase(ctx.Context(), telegramID, uint(id))
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		keyboard := tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("💰 Пополнить баланс").WithCallbackData("topup"),
			),
		)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(telegramID), "❌ Недостаточно средств на балансе.",
		).WithReplyMarkup(keyboard))
	case errors.Is(err, store.ErrOutOfStock):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(telegramID), "❌ Товар закончился."))
	case errors.Is(err, store.ErrNotFound):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(telegramID), "❌ Товар не найден."))
	case errors.Is(err, store.ErrUserBanned):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(telegramID), "🚫 Вы заблокированы."))
	case err != nil:
		return fmt.Errorf("purchase: %w", err)
	default:
		user, userErr := b.Store.GetUser(ctx.Context(), telegramID)
		balance := int64(0)
		if userErr == nil {
			balance = user.Balance
		}
		text := fmt.Sprintf("✅ <b>Покупка совершена!</b>\n\n📦 %s\n💰 Списано: %s\n💳 Баланс: %s",
			order.ProductName,
			b.formatPrice(ctx.Context(), order.Amount),
			b.formatPrice(ctx.Context(), balance))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(telegramID), text).
			WithParseMode(telego.ModeHTML))
		b.notifyAdminPurchase(ctx, callback.From, order)
	}
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) notifyAdminPurchase(ctx *th.Context, from telego.User, order *models.Order) {
	enabled := b.Store.GetSettingInt(ctx.Context(), models.SettingAdminNotifications, 1)
	if enabled == 0 || b.Cfg.AdminID == 0 || b.Cfg.AdminID == from.ID {
		return
	}
	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(b.Cfg.AdminID),
		fmt.Sprintf("🛒 Новый заказ #%d: %s за %s (покупатель @%s)",
			order.ID, order.ProductName, b.formatPrice(ctx.Context(), order.Amount), from.Username),
	))
	if err != nil {
		zap.L().Warn("Failed to notify admin about purchase", zap.Error(err))
	}
}

func (b *Bot) handleBalance(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	user, err := b.Store.GetUser(ctx.Context(), callback.From.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	text := fmt.Sprintf("💰 <b>Ваш баланс:</b> %s\n\n📈 Всего пополнено: %s\n📉 Всего потрачено: %s",
		b.formatPrice(ctx.Context(), user.Balance),
		b.formatPrice(ctx.Context(), user.TotalDeposited),
		b.formatPrice(ctx.Context(), user.TotalSpent))
	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("💳 Пополнить").WithCallbackData("topup"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« В меню").WithCallbackData("main_menu"),
		),
	)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(keyboard))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleTopUp(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	min, max := b.Ledger.DepositBounds(ctx.Context())
	result := b.Sessions.StartDeposit(callback.From.ID, min, max)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), result.Prompt).
		WithReplyMarkup(cancelKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleProfile(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	user, err := b.Store.GetUser(ctx.Context(), callback.From.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	text := fmt.Sprintf("👤 <b>Профиль</b>\n\n🔹 ID: <code>%d</code>\n🔹 Баланс: %s\n"+
		"🔹 Покупок на: %s\n🔹 Приглашено: %d\n🔹 Заработано на рефералах: %s\n🔹 Регистрация: %s",
		user.TelegramID,
		b.formatPrice(ctx.Context(), user.Balance),
		b.formatPrice(ctx.Context(), user.TotalSpent),
		user.TotalReferrals,
		b.formatPrice(ctx.Context(), user.ReferralEarnings),
		user.CreatedAt.Format("02.01.2006"))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(backToMenuKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handlePromoRedeem(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	result := b.Sessions.Start(callback.From.ID, session.FlowRedeemCode)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), result.Prompt).
		WithReplyMarkup(cancelKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleReferrals(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	user, err := b.Store.GetUser(ctx.Context(), callback.From.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	botUsername := ""
	if info, infoErr := ctx.Bot().GetMe(ctx.Context()); infoErr == nil {
		botUsername = info.Username
	}
	refLink := fmt.Sprintf("https://t.me/%s?start=%s", botUsername, user.ReferralCode)

	bonusInviter := b.Store.GetSettingInt(ctx.Context(), models.SettingReferralBonusInviter, b.Cfg.ReferralBonusInviter)
	refPercent := b.Store.GetSettingInt(ctx.Context(), models.SettingRefPercent, b.Cfg.RefPercent)

	// Live count rather than the denormalized counter; fall back if the
	// query fails.
	invited := int64(user.TotalReferrals)
	if count, countErr := b.Store.CountReferrals(ctx.Context(), callback.From.ID); countErr == nil {
		invited = count
	}

	text := fmt.Sprintf("👥 <b>Реферальная программа</b>\n\n"+
		"За каждого приглашённого: %s\nПлюс %d%% с его покупок.\n\n"+
		"👥 Приглашено: %d\n💰 Заработано: %s\n\n🔗 Ваша ссылка:\n<code>%s</code>",
		b.formatPrice(ctx.Context(), bonusInviter),
		refPercent,
		invited,
		b.formatPrice(ctx.Context(), user.ReferralEarnings),
		refLink)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(backToMenuKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleMyOrders(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	orders, err := b.Store.ListOrders(ctx.Context(), callback.From.ID, 10)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	if len(orders) == 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "📦 У вас пока нет покупок.").
			WithReplyMarkup(backToMenuKeyboard()))
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	var sb strings.Builder
	sb.WriteString("📦 <b>Последние покупки:</b>\n\n")
	for _, order := range orders {
		sb.WriteString(fmt.Sprintf("• %s — %s (%s)\n",
			order.ProductName,
			b.formatPrice(ctx.Context(), order.Amount),
			order.CreatedAt.Format("02.01.2006 15:04")))
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), sb.String()).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(backToMenuKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleSupport(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	support, _ := b.Store.GetSetting(ctx.Context(), models.SettingSupportContact)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(callback.From.ID),
		fmt.Sprintf("📞 По всем вопросам: %s", support),
	).WithReplyMarkup(backToMenuKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleCancel(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	b.Sessions.Cancel(callback.From.ID)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "Действие отменено.").
		WithReplyMarkup(b.mainMenuKeyboard(ctx.Context(), callback.From.ID, callback.From.Username)))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) maintenanceOn(ctx *th.Context, userID int64, username string) bool {
	if b.Store.GetSettingInt(ctx.Context(), models.SettingMaintenanceMode, 0) == 0 {
		return false
	}
	return !b.isAdmin(ctx.Context(), userID, username)
}
