package bot

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"storefront-bot/internal/charts"
	"storefront-bot/internal/models"
	"storefront-bot/internal/promo"
	"storefront-bot/internal/session"
	"storefront-bot/internal/store"
)

func adminName(from telego.User) string {
	if from.Username != "" {
		return "@" + from.Username
	}
	return fmt.Sprintf("ID:%d", from.ID)
}

// requireAdmin answers non-admins with a denial and reports whether the
// caller may proceed.
func (b *Bot) requireAdmin(ctx *th.Context, from telego.User, chatID int64) bool {
	if b.isAdmin(ctx.Context(), from.ID, from.Username) {
		return true
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(chatID), "⛔ Недостаточно прав."))
	return false
}

func (b *Bot) handleAdminCommand(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}
	text := "👑 Админ-панель:\n\n" +
		"Каталог: /addcategory, /delcategory, /addproduct, /setstock, /delproduct"
	_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text).
		WithReplyMarkup(adminPanelKeyboard()))
	return err
}

func (b *Bot) handleAdminPanel(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if b.requireAdmin(ctx, callback.From, callback.From.ID) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "👑 Админ-панель:").
			WithReplyMarkup(adminPanelKeyboard()))
	}
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleAdminStats(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	stats, err := b.Store.GetShopStats(ctx.Context())
	if err != nil {
		return fmt.Errorf("get shop stats: %w", err)
	}

	text := fmt.Sprintf("📊 <b>Статистика магазина</b>\n\n"+
		"👥 Пользователей: %d (активных за неделю: %d, в бане: %d)\n"+
		"💰 Суммарный баланс: %s\n"+
		"📦 Товаров: %d\n"+
		"🛒 Заказов: %d на %s\n"+
		"📅 Сегодня: %d заказов на %s\n"+
		"🤝 Рефералов: %d, выплачено бонусов: %s",
		stats.TotalUsers, stats.ActiveUsers, stats.BannedUsers,
		b.formatPrice(ctx.Context(), stats.TotalBalance),
		stats.TotalProducts,
		stats.TotalOrders, b.formatPrice(ctx.Context(), stats.TotalRevenue),
		stats.TodayOrders, b.formatPrice(ctx.Context(), stats.TodayRevenue),
		stats.TotalReferrals, b.formatPrice(ctx.Context(), stats.RefEarnings))

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(adminPanelKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleAdminPromos(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	promos, err := b.Store.ListPromocodes(ctx.Context(), 20)
	if err != nil {
		return fmt.Errorf("list promocodes: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("🎫 <b>Промокоды</b>\n\n")
	if len(promos) == 0 {
		sb.WriteString("Пока нет ни одного промокода.\n")
	}
	for _, p := range promos {
		status := "✅"
		if !p.IsActive {
			status = "❌"
		}
		uses := "∞"
		if p.MaxUses > 0 {
			uses = fmt.Sprintf("%d/%d", p.UsedCount, p.MaxUses)
		}
		expiry := ""
		if p.ExpiresAt != nil {
			expiry = " до " + p.ExpiresAt.Format("02.01.2006")
		}
		sb.WriteString(fmt.Sprintf("%s <code>%s</code> — %s, %s%s\n",
			status, p.Code, b.formatPrice(ctx.Context(), p.Amount), uses, expiry))
	}
	sb.WriteString("\nКоманды: /addpromo КОД СУММА [ЛИМИТ] [ДНИ], /delpromo КОД")

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), sb.String()).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(promoAdminKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handlePromoCustomFlow(ctx *th.Context, update telego.Update) error {
	return b.startPromoFlow(ctx, update, session.FlowPromoCustom)
}

func (b *Bot) handlePromoFullFlow(ctx *th.Context, update telego.Update) error {
	return b.startPromoFlow(ctx, update, session.FlowPromoFull)
}

func (b *Bot) startPromoFlow(ctx *th.Context, update telego.Update, kind session.FlowKind) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}
	result := b.Sessions.Start(callback.From.ID, kind)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), result.Prompt).
		WithReplyMarkup(cancelKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handlePromoSmart(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	created, err := b.Promo.CreateSmart(ctx.Context(), callback.From.ID,
		promo.SmartOverrides{Amount: -1, MaxUses: -1, ExpiresDays: -1})
	if err != nil {
		return fmt.Errorf("create smart promo: %w", err)
	}
	b.Audit.Record(adminName(callback.From), "create_smart_promo", created.Code,
		fmt.Sprintf("amount:%d, uses:%d", created.Amount, created.MaxUses))

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(callback.From.ID), b.promoCreatedMessage(ctx, created.Code, created.Amount, created.MaxUses, created.ExpiresAt != nil),
	).WithParseMode(telego.ModeHTML))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) promoCreatedMessage(ctx *th.Context, code string, amount int64, maxUses int, hasExpiry bool) string {
	usesText := "бесконечно"
	if maxUses > 0 {
		usesText = fmt.Sprintf("%d использований", maxUses)
	}
	text := fmt.Sprintf("✅ <b>Промокод создан!</b>\n\n🎫 Код: <code>%s</code>\n💰 Сумма: %s\n📊 Использований: %s",
		code, b.formatPrice(ctx.Context(), amount), usesText)
	if hasExpiry {
		text += "\n📅 Срок действия ограничен"
	}
	return text
}

func (b *Bot) handleAddPromo(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	if len(args) < 2 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "Использование: /addpromo КОД СУММА [ЛИМИТ] [ДНИ]",
		))
		return nil
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount < 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Некорректная сумма."))
		return nil
	}
	maxUses := 1
	if len(args) > 2 {
		if v, convErr := strconv.Atoi(args[2]); convErr == nil && v >= 0 {
			maxUses = v
		}
	}
	expiresDays := 0
	if len(args) > 3 {
		if v, convErr := strconv.Atoi(args[3]); convErr == nil && v >= 0 {
			expiresDays = v
		}
	}

	created, err := b.Promo.Create(ctx.Context(), promo.CreateParams{
		Code:        args[0],
		Amount:      amount,
		MaxUses:     maxUses,
		ExpiresDays: expiresDays,
		CreatedBy:   message.From.ID,
	})
	switch {
	case errors.Is(err, promo.ErrBadCode), errors.Is(err, promo.ErrCodeTaken):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ "+err.Error()))
		return nil
	case err != nil:
		return fmt.Errorf("create promo: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "create_promo", created.Code,
		fmt.Sprintf("amount:%d, uses:%d, expires:%dd", created.Amount, created.MaxUses, expiresDays))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID), b.promoCreatedMessage(ctx, created.Code, created.Amount, created.MaxUses, created.ExpiresAt != nil),
	).WithParseMode(telego.ModeHTML))
	return nil
}

func (b *Bot) handleSmartPromo(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	// Optional positional overrides: amount, uses, days. Missing values are
	// inferred from shop statistics.
	overrides := promo.SmartOverrides{Amount: -1, MaxUses: -1, ExpiresDays: -1}
	args := strings.Fields(message.Text)[1:]
	if len(args) > 0 {
		if v, err := strconv.ParseInt(args[0], 10, 64); err == nil && v >= 0 {
			overrides.Amount = v
		}
	}
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v >= 0 {
			overrides.MaxUses = v
		}
	}
	if len(args) > 2 {
		if v, err := strconv.Atoi(args[2]); err == nil && v >= 0 {
			overrides.ExpiresDays = v
		}
	}

	created, err := b.Promo.CreateSmart(ctx.Context(), message.From.ID, overrides)
	if err != nil {
		return fmt.Errorf("create smart promo: %w", err)
	}
	b.Audit.Record(adminName(*message.From), "create_smart_promo", created.Code,
		fmt.Sprintf("amount:%d, uses:%d", created.Amount, created.MaxUses))

	text := b.promoCreatedMessage(ctx, created.Code, created.Amount, created.MaxUses, created.ExpiresAt != nil) +
		"\n\n💡 Автонастройка по статистике!"
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text).
		WithParseMode(telego.ModeHTML))
	return nil
}

func (b *Bot) handleDelPromo(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	if len(args) != 1 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /delpromo КОД"))
		return nil
	}

	err := b.Store.DeactivatePromocode(ctx.Context(), args[0])
	if errors.Is(err, store.ErrPromoNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Промокод не найден."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("deactivate promo: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "deactivate_promo", strings.ToUpper(args[0]), "")
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "✅ Промокод деактивирован."))
	return nil
}

func (b *Bot) handleGrant(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	if len(args) != 2 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /grant ID СУММА"))
		return nil
	}
	userID, err1 := strconv.ParseInt(args[0], 10, 64)
	amount, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil || amount <= 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Некорректные аргументы."))
		return nil
	}

	err := b.Ledger.Grant(ctx.Context(), userID, amount)
	if errors.Is(err, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Пользователь не найден."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("grant balance: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "grant_balance",
		strconv.FormatInt(userID, 10), fmt.Sprintf("amount:%d", amount))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		fmt.Sprintf("✅ Начислено %s пользователю %d.", b.formatPrice(ctx.Context(), amount), userID),
	))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(userID),
		fmt.Sprintf("🎁 Вам начислено %s администратором.", b.formatPrice(ctx.Context(), amount)),
	))
	return nil
}

func (b *Bot) handleBan(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	if len(args) < 1 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /ban ID [ПРИЧИНА]"))
		return nil
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Некорректный ID."))
		return nil
	}
	reason := "нарушение правил"
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}

	banErr := b.Store.BanUser(ctx.Context(), userID, message.From.ID, reason)
	if errors.Is(banErr, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Пользователь не найден."))
		return nil
	}
	if banErr != nil {
		return fmt.Errorf("ban user: %w", banErr)
	}

	// A banned user loses cached privileges immediately.
	b.Admins.Invalidate(userID)
	b.Testers.Invalidate(userID)
	b.Sessions.Cancel(userID)

	b.Audit.Record(adminName(*message.From), "ban_user", strconv.FormatInt(userID, 10), reason)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID), fmt.Sprintf("✅ Пользователь %d заблокирован.", userID),
	))
	return nil
}

func (b *Bot) handleUnban(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	if len(args) != 1 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /unban ID"))
		return nil
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Некорректный ID."))
		return nil
	}

	unbanErr := b.Store.UnbanUser(ctx.Context(), userID)
	if errors.Is(unbanErr, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Пользователь не найден."))
		return nil
	}
	if unbanErr != nil {
		return fmt.Errorf("unban user: %w", unbanErr)
	}

	b.Audit.Record(adminName(*message.From), "unban_user", strconv.FormatInt(userID, 10), "")
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID), fmt.Sprintf("✅ Пользователь %d разблокирован.", userID),
	))
	return nil
}

func (b *Bot) handleSetSetting(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	if len(args) < 2 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /setsetting КЛЮЧ ЗНАЧЕНИЕ"))
		return nil
	}
	key := args[0]
	value := strings.Join(args[1:], " ")

	if err := b.Store.SetSetting(ctx.Context(), key, value); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	b.Audit.Record(adminName(*message.From), "set_setting", key, value)
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID), fmt.Sprintf("✅ Настройка <code>%s</code> обновлена.", key),
	).WithParseMode(telego.ModeHTML))
	return nil
}

func (b *Bot) handleAdminSettings(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	settings, err := b.Store.AllSettings(ctx.Context())
	if err != nil {
		return fmt.Errorf("list settings: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("⚙️ <b>Настройки</b>\n\n")
	for _, s := range settings {
		sb.WriteString(fmt.Sprintf("<code>%s</code> = %s — %s\n", s.Key, s.Value, s.Description))
	}
	sb.WriteString("\nИзменить: /setsetting КЛЮЧ ЗНАЧЕНИЕ")

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), sb.String()).
		WithParseMode(telego.ModeHTML).WithReplyMarkup(adminPanelKeyboard()))
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleChartSales(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	rows, err := b.Store.SalesByDay(ctx.Context(), 30)
	if err != nil {
		return fmt.Errorf("sales by day: %w", err)
	}
	png, err := charts.SalesChart(rows, 30, b.currency(ctx.Context()))
	return b.sendChart(ctx, callback, png, err)
}

func (b *Bot) handleChartUsers(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	rows, err := b.Store.RegistrationsByDay(ctx.Context(), 30)
	if err != nil {
		return fmt.Errorf("registrations by day: %w", err)
	}
	png, err := charts.RegistrationsChart(rows, 30)
	return b.sendChart(ctx, callback, png, err)
}

func (b *Bot) handleChartTop(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	rows, err := b.Store.TopProducts(ctx.Context(), 10)
	if err != nil {
		return fmt.Errorf("top products: %w", err)
	}
	png, err := charts.TopProductsChart(rows)
	return b.sendChart(ctx, callback, png, err)
}

func (b *Bot) sendChart(ctx *th.Context, callback *telego.CallbackQuery, png []byte, err error) error {
	if errors.Is(err, charts.ErrNoData) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(callback.From.ID), "📉 Пока недостаточно данных для графика.",
		))
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	_, sendErr := ctx.Bot().SendPhoto(ctx.Context(), tu.Photo(
		tu.ID(callback.From.ID),
		tu.File(tu.NameReader(bytes.NewReader(png), "chart.png")),
	))
	if sendErr != nil {
		return fmt.Errorf("send chart: %w", sendErr)
	}
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

// depositResolvedReply tells the admin how an already-handled request
// ended up, so two admins racing on the same buttons see the outcome.
func (b *Bot) depositResolvedReply(ctx *th.Context, chatID int64, requestID string) {
	text := "⚠️ Заявка уже обработана."
	if req, err := b.Store.GetDepositRequest(ctx.Context(), requestID); err == nil {
		switch req.Status {
		case models.DepositStatusConfirmed:
			text = "⚠️ Заявка уже подтверждена другим администратором."
		case models.DepositStatusRejected:
			text = "⚠️ Заявка уже отклонена другим администратором."
		}
	}
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(chatID), text))
}

func (b *Bot) handleDepositConfirm(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	requestID := strings.TrimPrefix(callback.Data, "dep_ok_")
	req, err := b.Ledger.ConfirmDeposit(ctx.Context(), requestID, callback.From.ID)
	switch {
	case errors.Is(err, store.ErrDepositResolved):
		b.depositResolvedReply(ctx, callback.From.ID, requestID)
	case errors.Is(err, store.ErrNotFound):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "❌ Заявка не найдена."))
	case err != nil:
		return fmt.Errorf("confirm deposit: %w", err)
	default:
		b.Audit.Record(adminName(callback.From), "confirm_deposit",
			strconv.FormatInt(req.UserID, 10), fmt.Sprintf("amount:%d, request:%s", req.Amount, req.ID))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(callback.From.ID),
			fmt.Sprintf("✅ Пополнение на %s подтверждено.", b.formatPrice(ctx.Context(), req.Amount)),
		))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(req.UserID),
			fmt.Sprintf("✅ Баланс пополнен на %s.", b.formatPrice(ctx.Context(), req.Amount)),
		))
	}
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}

func (b *Bot) handleDepositReject(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery
	if !b.requireAdmin(ctx, callback.From, callback.From.ID) {
		return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
	}

	requestID := strings.TrimPrefix(callback.Data, "dep_no_")
	req, err := b.Ledger.RejectDeposit(ctx.Context(), requestID, callback.From.ID)
	switch {
	case errors.Is(err, store.ErrDepositResolved):
		b.depositResolvedReply(ctx, callback.From.ID, requestID)
	case errors.Is(err, store.ErrNotFound):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), "❌ Заявка не найдена."))
	case err != nil:
		return fmt.Errorf("reject deposit: %w", err)
	default:
		b.Audit.Record(adminName(callback.From), "reject_deposit",
			strconv.FormatInt(req.UserID, 10), fmt.Sprintf("amount:%d, request:%s", req.Amount, req.ID))
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(req.UserID), "❌ Заявка на пополнение отклонена. Свяжитесь с поддержкой.",
		))
	}
	return ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
}
