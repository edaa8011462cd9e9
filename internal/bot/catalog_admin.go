package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"storefront-bot/internal/models"
	"storefront-bot/internal/store"
)

// Catalog management commands. Same shape as the promo commands:
// positional args, short usage line on mistakes, audit record on success.

func (b *Bot) handleAddCategory(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	name := strings.Join(strings.Fields(message.Text)[1:], " ")
	if name == "" {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "Использование: /addcategory НАЗВАНИЕ",
		))
		return nil
	}

	category := &models.Category{Name: name, IsActive: true}
	if err := b.Store.CreateCategory(ctx.Context(), category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "create_category", name, fmt.Sprintf("id:%d", category.ID))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID), fmt.Sprintf("✅ Категория «%s» создана (ID %d).", name, category.ID),
	))
	return nil
}

func (b *Bot) handleDelCategory(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	id, err := parseID(args, 0)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /delcategory ID"))
		return nil
	}

	err = b.Store.SetCategoryActive(ctx.Context(), id, false)
	if errors.Is(err, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Категория не найдена."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "deactivate_category", strconv.FormatUint(uint64(id), 10), "")
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "✅ Категория скрыта из каталога."))
	return nil
}

func (b *Bot) handleAddProduct(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	usage := "Использование: /addproduct КАТЕГОРИЯ ЦЕНА СКЛАД НАЗВАНИЕ (склад -1 — без лимита)"
	args := strings.Fields(message.Text)[1:]
	if len(args) < 4 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), usage))
		return nil
	}

	categoryID, err := parseID(args, 0)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), usage))
		return nil
	}
	price, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || price < 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Некорректная цена."))
		return nil
	}
	stock, err := strconv.Atoi(args[2])
	if err != nil || stock < -1 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Некорректный склад (число или -1)."))
		return nil
	}
	name := strings.Join(args[3:], " ")

	product := &models.Product{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
		Stock:      stock,
		IsActive:   true,
	}
	if err := b.Store.CreateProduct(ctx.Context(), product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "create_product", name,
		fmt.Sprintf("id:%d, price:%d, stock:%d", product.ID, price, stock))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID),
		fmt.Sprintf("✅ Товар «%s» создан (ID %d, %s).", name, product.ID, b.formatPrice(ctx.Context(), price)),
	))
	return nil
}

func (b *Bot) handleDelProduct(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	args := strings.Fields(message.Text)[1:]
	id, err := parseID(args, 0)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "Использование: /delproduct ID"))
		return nil
	}

	err = b.Store.SetProductActive(ctx.Context(), id, false)
	if errors.Is(err, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Товар не найден."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "deactivate_product", strconv.FormatUint(uint64(id), 10), "")
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "✅ Товар скрыт из каталога."))
	return nil
}

func (b *Bot) handleSetStock(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if !b.requireAdmin(ctx, *message.From, message.Chat.ID) {
		return nil
	}

	usage := "Использование: /setstock ID КОЛИЧЕСТВО (-1 — без лимита)"
	args := strings.Fields(message.Text)[1:]
	if len(args) != 2 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), usage))
		return nil
	}
	id, err := parseID(args, 0)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), usage))
		return nil
	}
	stock, err := strconv.Atoi(args[1])
	if err != nil || stock < -1 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), usage))
		return nil
	}

	product, err := b.Store.GetProduct(ctx.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), "❌ Товар не найден."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	product.Stock = stock
	if err := b.Store.UpdateProduct(ctx.Context(), product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	b.Audit.Record(adminName(*message.From), "set_stock",
		strconv.FormatUint(uint64(id), 10), fmt.Sprintf("stock:%d", stock))
	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
		tu.ID(message.Chat.ID), fmt.Sprintf("✅ Склад товара «%s» обновлён: %d.", product.Name, stock),
	))
	return nil
}

func parseID(args []string, idx int) (uint, error) {
	if idx >= len(args) {
		return 0, errors.New("missing argument")
	}
	v, err := strconv.ParseUint(args[idx], 10, 32)
	if err != nil || v == 0 {
		return 0, errors.New("bad id")
	}
	return uint(v), nil
}
