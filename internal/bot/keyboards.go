package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"storefront-bot/internal/models"
)

func (b *Bot) mainMenuKeyboard(ctx context.Context, userID int64, username string) *telego.InlineKeyboardMarkup {
	rows := [][]telego.InlineKeyboardButton{
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🛍️ Магазин").WithCallbackData("shop"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("💰 Баланс").WithCallbackData("balance"),
			tu.InlineKeyboardButton("👤 Профиль").WithCallbackData("profile"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🎫 Промокод").WithCallbackData("promo"),
			tu.InlineKeyboardButton("👥 Рефералы").WithCallbackData("referrals"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📦 Мои покупки").WithCallbackData("my_orders"),
			tu.InlineKeyboardButton("📞 Поддержка").WithCallbackData("support"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("ℹ️ Помощь").WithCallbackData("help"),
		),
	}
	if b.isAdmin(ctx, userID, username) {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("👑 Админ-панель").WithCallbackData("admin_panel"),
		))
	}
	return tu.InlineKeyboard(rows...)
}

func adminPanelKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📊 Статистика").WithCallbackData("admin_stats"),
			tu.InlineKeyboardButton("🎫 Промокоды").WithCallbackData("admin_promos"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📈 Продажи").WithCallbackData("admin_chart_sales"),
			tu.InlineKeyboardButton("👥 Регистрации").WithCallbackData("admin_chart_users"),
			tu.InlineKeyboardButton("🏆 Топ товаров").WithCallbackData("admin_chart_top"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("⚙️ Настройки").WithCallbackData("admin_settings"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« В меню").WithCallbackData("main_menu"),
		),
	)
}

func promoAdminKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✨ Умный промокод").WithCallbackData("admin_promo_smart"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✏️ Свой код").WithCallbackData("admin_promo_custom"),
			tu.InlineKeyboardButton("🛠 Полная настройка").WithCallbackData("admin_promo_full"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« Назад").WithCallbackData("admin_panel"),
		),
	)
}

func (b *Bot) categoriesKeyboard(categories []models.Category) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	for _, cat := range categories {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(cat.Name).WithCallbackData(fmt.Sprintf("shop_cat_%d", cat.ID)),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("« В меню").WithCallbackData("main_menu"),
	))
	return tu.InlineKeyboard(rows...)
}

func (b *Bot) productsKeyboard(ctx context.Context, products []models.Product) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton
	for _, p := range products {
		label := fmt.Sprintf("%s — %s", p.Name, b.formatPrice(ctx, p.Price))
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(fmt.Sprintf("product_%d", p.ID)),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("« Назад").WithCallbackData("shop"),
	))
	return tu.InlineKeyboard(rows...)
}

func cancelKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✖️ Отмена").WithCallbackData("cancel"),
		),
	)
}

func backToMenuKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("« В меню").WithCallbackData("main_menu"),
		),
	)
}
