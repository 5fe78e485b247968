package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
)

const chatListText = "📋 <b>Ваши чаты:</b>\n🟢 — активный чат\n\nВыберите чат или создайте новый:"

// chatsKeyboard 按用户当前对话槽构建选择键盘
func (h *Handler) chatsKeyboard(userID int64) (tgbotapi.InlineKeyboardMarkup, error) {
	infos, err := h.profiles.List(userID)
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}
	return buildChatsKeyboard(infos, h.cfg.Limits.MaxProfiles), nil
}

func buildChatsKeyboard(profiles []dto.ProfileInfo, maxProfiles int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(profiles)+1)
	for _, p := range profiles {
		prefix := "📝"
		if p.Active {
			prefix = "🟢"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", prefix, p.Name),
				fmt.Sprintf("select_chat:%d", p.ID),
			),
		))
	}

	if len(profiles) < maxProfiles {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Создать новый чат", "create_chat"),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// activeChatKeyboard 激活槽内的操作按钮
func activeChatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Редактировать стиль", "edit_style"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Очистить контекст", "clear_context"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔀 Сменить чат", "switch_chat"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить чат", "delete_chat"),
		),
	)
}
