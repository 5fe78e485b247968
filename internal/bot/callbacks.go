package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yunuszade97-del/treadsbot/internal/pkg/dialog"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, "select_chat:"):
		return h.cbSelectChat(ctx, cb)
	case data == "create_chat":
		return h.cbCreateChat(ctx, cb)
	case data == "clear_context":
		return h.cbClearContext(cb)
	case data == "switch_chat":
		return h.cbSwitchChat(ctx, cb)
	case data == "delete_chat":
		return h.cbDeleteChat(cb)
	case data == "edit_style":
		return h.cbEditStyle(ctx, cb)
	}

	return h.answer(cb.ID)
}

// cbSelectChat 激活选中的对话槽
func (h *Handler) cbSelectChat(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if err := h.dialogs.Clear(ctx, cb.Message.Chat.ID); err != nil {
		log.Printf("Failed to clear dialog state: %v", err)
	}

	profileID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "select_chat:"), 10, 64)
	if err != nil {
		return h.alert(cb.ID, "❌ Чат не найден")
	}

	user, err := h.usage.GetOrCreateUser(cb.From.ID)
	if err != nil {
		return err
	}

	profile, err := h.profiles.Activate(user.ID, profileID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return h.alert(cb.ID, "❌ Чат не найден")
		}
		return err
	}

	text := fmt.Sprintf(
		"🟢 Активный чат: <b>%s</b>\n\n🎭 Стиль: <i>%s</i>\n\nОтправьте тему — и я создам пост!",
		profile.Name, truncate(profile.SystemPrompt, 100),
	)
	if err := h.editWithKeyboard(cb, text, activeChatKeyboard()); err != nil {
		return err
	}
	return h.answer(cb.ID)
}

// cbCreateChat 进入两步建槽流程
func (h *Handler) cbCreateChat(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	user, err := h.usage.GetOrCreateUser(cb.From.ID)
	if err != nil {
		return err
	}

	infos, err := h.profiles.List(user.ID)
	if err != nil {
		return err
	}
	if len(infos) >= h.cfg.Limits.MaxProfiles {
		return h.alert(cb.ID, fmt.Sprintf(
			"❌ Максимум %d чатов. Удалите один, чтобы создать новый.",
			h.cfg.Limits.MaxProfiles,
		))
	}

	if err := h.dialogs.Set(ctx, cb.Message.Chat.ID, &dialog.State{Step: dialog.StepAwaitProfileName}); err != nil {
		return err
	}

	text := "📝 <b>Создание нового чата</b>\n\n" +
		"Шаг 1/2: Как назовём чат?\n\n" +
		"Примеры: <i>IT Блог, Мотивация, Бизнес, Лайфстайл, Юмор</i>"
	if err := h.edit(cb, text); err != nil {
		return err
	}
	return h.answer(cb.ID)
}

// cbClearContext 清空当前激活槽的上下文
func (h *Handler) cbClearContext(cb *tgbotapi.CallbackQuery) error {
	user, err := h.usage.GetOrCreateUser(cb.From.ID)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetActive(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveProfile) {
			return h.alert(cb.ID, "⚠️ Нет активного чата")
		}
		return err
	}

	if _, err := h.profiles.ClearContext(user.ID, profile.ID); err != nil {
		return err
	}

	return h.alert(cb.ID, "🗑 Контекст очищен!")
}

// cbSwitchChat 回到槽选择菜单
func (h *Handler) cbSwitchChat(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if err := h.dialogs.Clear(ctx, cb.Message.Chat.ID); err != nil {
		log.Printf("Failed to clear dialog state: %v", err)
	}

	user, err := h.usage.GetOrCreateUser(cb.From.ID)
	if err != nil {
		return err
	}

	kb, err := h.chatsKeyboard(user.ID)
	if err != nil {
		return err
	}

	if err := h.editWithKeyboard(cb, chatListText, kb); err != nil {
		return err
	}
	return h.answer(cb.ID)
}

// cbDeleteChat 删除当前激活槽
func (h *Handler) cbDeleteChat(cb *tgbotapi.CallbackQuery) error {
	user, err := h.usage.GetOrCreateUser(cb.From.ID)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetActive(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveProfile) {
			return h.alert(cb.ID, "⚠️ Нет активного чата")
		}
		return err
	}

	name := profile.Name
	if err := h.profiles.Delete(user.ID, profile.ID); err != nil {
		return err
	}

	kb, err := h.chatsKeyboard(user.ID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🗑 Чат <b>%s</b> удалён.\n\nВыберите другой чат или создайте новый:", name)
	if err := h.editWithKeyboard(cb, text, kb); err != nil {
		return err
	}
	return h.answer(cb.ID)
}

// cbEditStyle 进入改风格流程
func (h *Handler) cbEditStyle(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	user, err := h.usage.GetOrCreateUser(cb.From.ID)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetActive(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveProfile) {
			return h.alert(cb.ID, "⚠️ Нет активного чата")
		}
		return err
	}

	state := &dialog.State{
		Step:      dialog.StepAwaitNewStyle,
		ProfileID: profile.ID,
	}
	if err := h.dialogs.Set(ctx, cb.Message.Chat.ID, state); err != nil {
		return err
	}

	text := fmt.Sprintf(
		"✏️ <b>Редактирование стиля: %s</b>\n\nТекущий стиль:\n<i>%s</i>\n\nОтправьте новое описание стиля:",
		profile.Name, truncate(profile.SystemPrompt, 200),
	)
	if err := h.edit(cb, text); err != nil {
		return err
	}
	return h.answer(cb.ID)
}

func (h *Handler) answer(callbackID string) error {
	_, err := h.api.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

func (h *Handler) alert(callbackID, text string) error {
	_, err := h.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text))
	return err
}

func (h *Handler) edit(cb *tgbotapi.CallbackQuery, text string) error {
	m := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	m.ParseMode = tgbotapi.ModeHTML
	_, err := h.api.Send(m)
	return err
}

func (h *Handler) editWithKeyboard(cb *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	m := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, kb)
	m.ParseMode = tgbotapi.ModeHTML
	_, err := h.api.Send(m)
	return err
}
