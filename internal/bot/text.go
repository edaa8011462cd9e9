package bot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"storefront-bot/internal/promo"
	"storefront-bot/internal/session"
	"storefront-bot/internal/store"
)

// handleText routes free-form messages into the active dialogue flow.
// Users without a session get a nudge back to the menu.
func (b *Bot) handleText(ctx *th.Context, update telego.Update) error {
	message := update.Message
	userID := message.From.ID

	kind, ok := b.Sessions.Active(userID)
	if !ok {
		_, err := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "Используйте меню 👇",
		).WithReplyMarkup(backToMenuKeyboard()))
		return err
	}

	result, err := b.Sessions.Advance(ctx.Context(), userID, message.Text)
	var vErr *session.ValidationError
	if errors.As(err, &vErr) {
		_, sendErr := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "❌ "+vErr.Msg+"\n\n"+result.Prompt,
		).WithReplyMarkup(cancelKeyboard()))
		return sendErr
	}
	if errors.Is(err, session.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("advance session: %w", err)
	}

	if !result.Done {
		_, sendErr := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), result.Prompt,
		).WithReplyMarkup(cancelKeyboard()))
		return sendErr
	}

	switch kind {
	case session.FlowRedeemCode:
		return b.finishRedeem(ctx, message, result.Text)
	case session.FlowDepositAmount:
		return b.finishDeposit(ctx, message, result.Amount)
	case session.FlowPromoCustom, session.FlowPromoFull:
		return b.finishPromoCreate(ctx, message, result.Draft)
	}
	return nil
}

func (b *Bot) finishRedeem(ctx *th.Context, message *telego.Message, code string) error {
	redeemed, err := b.Promo.Redeem(ctx.Context(), code, message.From.ID)
	switch {
	case errors.Is(err, store.ErrPromoNotFound):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "❌ Промокод не найден или неактивен.",
		).WithReplyMarkup(backToMenuKeyboard()))
		return nil
	case errors.Is(err, store.ErrPromoExpired):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "⏰ Срок действия промокода истёк.",
		).WithReplyMarkup(backToMenuKeyboard()))
		return nil
	case errors.Is(err, store.ErrPromoExhausted):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "😔 Лимит активаций промокода исчерпан.",
		).WithReplyMarkup(backToMenuKeyboard()))
		return nil
	case err != nil:
		return fmt.Errorf("redeem promo: %w", err)
	}

	user, err := b.Store.GetUser(ctx.Context(), message.From.ID)
	if err != nil {
		return fmt.Errorf("get user after redeem: %w", err)
	}
	_, sendErr := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		fmt.Sprintf("🎉 Промокод активирован! +%s\n💰 Баланс: %s",
			b.formatPrice(ctx.Context(), redeemed.Amount),
			b.formatPrice(ctx.Context(), user.Balance)),
	).WithReplyMarkup(backToMenuKeyboard()))
	return sendErr
}

func (b *Bot) finishDeposit(ctx *th.Context, message *telego.Message, amount int64) error {
	req, err := b.Ledger.RequestDeposit(ctx.Context(), message.From.ID, amount)
	if err != nil {
		return fmt.Errorf("request deposit: %w", err)
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		fmt.Sprintf("📨 Заявка на пополнение %s отправлена. Ожидайте подтверждения.",
			b.formatPrice(ctx.Context(), amount)),
	).WithReplyMarkup(backToMenuKeyboard()))

	who := "@" + message.From.Username
	if message.From.Username == "" {
		who = strconv.FormatInt(message.From.ID, 10)
	}
	_, sendErr := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(b.Cfg.AdminID),
		fmt.Sprintf("💳 Заявка на пополнение\n\nПользователь: %s (ID: %d)\nСумма: %s",
			who, message.From.ID, b.formatPrice(ctx.Context(), amount)),
	).WithReplyMarkup(tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✅ Подтвердить").WithCallbackData("dep_ok_"+req.ID),
			tu.InlineKeyboardButton("❌ Отклонить").WithCallbackData("dep_no_"+req.ID),
		),
	)))
	return sendErr
}

func (b *Bot) finishPromoCreate(ctx *th.Context, message *telego.Message, draft session.PromoDraft) error {
	// Admin status is re-checked at completion time, not only at flow start.
	if !b.isAdmin(ctx.Context(), message.From.ID, message.From.Username) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "⛔ Недостаточно прав."))
		return nil
	}

	created, err := b.Promo.Create(ctx.Context(), promo.CreateParams{
		Code:            draft.Code,
		Amount:          draft.Amount,
		DiscountPercent: draft.DiscountPercent,
		MaxUses:         draft.MaxUses,
		ExpiresDays:     draft.ExpiresDays,
		CreatedBy:       message.From.ID,
	})
	switch {
	case errors.Is(err, promo.ErrCodeTaken), errors.Is(err, promo.ErrBadCode):
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "❌ "+err.Error(),
		).WithReplyMarkup(promoAdminKeyboard()))
		return nil
	case err != nil:
		return fmt.Errorf("create promo from flow: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "create_promo", created.Code,
		fmt.Sprintf("amount:%d, uses:%d, expires:%dd", created.Amount, created.MaxUses, draft.ExpiresDays))
	_, sendErr := ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		b.promoCreatedMessage(ctx, created.Code, created.Amount, created.MaxUses, created.ExpiresAt != nil),
	).WithParseMode(telego.ModeHTML).WithReplyMarkup(promoAdminKeyboard()))
	return sendErr
}
