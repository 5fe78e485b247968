package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/dialog"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/textutil"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

// sender 发送消息所需的最小接口，便于测试替身
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler 处理单条 Telegram 更新
type Handler struct {
	api      sender
	usage    *service.UsageService
	users    *service.UserService
	profiles *service.ProfileService
	generate *service.GenerateService
	dialogs  *dialog.Store
	cfg      *config.Config
}

func NewHandler(
	api sender,
	usage *service.UsageService,
	users *service.UserService,
	profiles *service.ProfileService,
	generate *service.GenerateService,
	dialogs *dialog.Store,
	cfg *config.Config,
) *Handler {
	return &Handler{
		api:      api,
		usage:    usage,
		users:    users,
		profiles: profiles,
		generate: generate,
		dialogs:  dialogs,
		cfg:      cfg,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil:
		return h.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	return nil
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		// 任何命令都会打断进行中的对话
		if err := h.dialogs.Clear(ctx, msg.Chat.ID); err != nil {
			log.Printf("Failed to clear dialog state: %v", err)
		}

		switch msg.Command() {
		case "start":
			return h.cmdStart(msg)
		case "chats", "switch":
			return h.cmdChats(msg)
		case "clear":
			return h.cmdClear(msg)
		case "pro_status":
			return h.cmdProStatus(msg)
		case "admin_promote":
			return h.cmdAdminPromote(msg)
		default:
			return h.reply(msg.Chat.ID, "Неизвестная команда. Используйте /chats или просто отправьте тему.")
		}
	}

	if msg.Text == "" {
		return nil
	}

	state, err := h.dialogs.Get(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	if state != nil {
		return h.handleDialogStep(ctx, msg, state)
	}

	return h.handleTopic(ctx, msg)
}

// cmdStart 注册用户并展示对话槽菜单
func (h *Handler) cmdStart(msg *tgbotapi.Message) error {
	user, err := h.usage.GetOrCreateUser(msg.From.ID)
	if err != nil {
		return err
	}

	kb, err := h.chatsKeyboard(user.ID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"👋 <b>Добро пожаловать в Threads Copilot!</b>\n\n"+
			"Выберите чат или создайте новый.\n"+
			"Каждый чат — это отдельный стиль генерации с памятью контекста.\n\n"+
			"🆓 Бесплатно: <b>%d</b> запросов/день",
		h.cfg.Limits.DailyFreeLimit,
	)
	return h.replyWithKeyboard(msg.Chat.ID, text, kb)
}

// cmdChats 展示所有对话槽
func (h *Handler) cmdChats(msg *tgbotapi.Message) error {
	user, err := h.usage.GetOrCreateUser(msg.From.ID)
	if err != nil {
		return err
	}

	kb, err := h.chatsKeyboard(user.ID)
	if err != nil {
		return err
	}

	return h.replyWithKeyboard(msg.Chat.ID, chatListText, kb)
}

// cmdClear 清空当前激活槽的上下文
func (h *Handler) cmdClear(msg *tgbotapi.Message) error {
	user, err := h.usage.GetOrCreateUser(msg.From.ID)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetActive(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveProfile) {
			return h.reply(msg.Chat.ID, "⚠️ Сначала выберите чат через /chats")
		}
		return err
	}

	if _, err := h.profiles.ClearContext(user.ID, profile.ID); err != nil {
		return err
	}

	return h.reply(msg.Chat.ID, fmt.Sprintf("🗑 Контекст чата <b>%s</b> очищен!", profile.Name))
}

// cmdProStatus 显示套餐与剩余次数
func (h *Handler) cmdProStatus(msg *tgbotapi.Message) error {
	info, err := h.usage.Status(msg.From.ID)
	if err != nil {
		return err
	}

	if info.IsPro {
		return h.reply(msg.Chat.ID, "⭐ Вы — <b>Pro</b> пользователь. Безлимитные запросы!")
	}

	text := fmt.Sprintf(
		"🆓 <b>Бесплатный</b> план\nОсталось запросов сегодня: <b>%d</b> / %d",
		info.Remaining, info.DailyLimit,
	)
	return h.reply(msg.Chat.ID, text)
}

// cmdAdminPromote 授予 Pro，仅管理员可用
func (h *Handler) cmdAdminPromote(msg *tgbotapi.Message) error {
	if !h.cfg.IsAdmin(msg.From.ID) {
		return h.reply(msg.Chat.ID, "⛔ У вас нет прав для этой команды.")
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return h.reply(msg.Chat.ID, "Использование: <code>/admin_promote &lt;telegram_id&gt;</code>")
	}

	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return h.reply(msg.Chat.ID, "⚠️ Укажите корректный числовой Telegram ID.")
	}

	if err := h.users.Promote(targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return h.reply(msg.Chat.ID, fmt.Sprintf(
				"❌ Пользователь с Telegram ID <code>%d</code> не найден.\nЕму нужно сначала написать /start боту.",
				targetID,
			))
		case errors.Is(err, service.ErrAlreadyPro):
			return h.reply(msg.Chat.ID, fmt.Sprintf("ℹ️ Пользователь <code>%d</code> уже Pro.", targetID))
		default:
			return err
		}
	}

	log.Printf("Admin %d promoted user %d to Pro", msg.From.ID, targetID)
	return h.reply(msg.Chat.ID, fmt.Sprintf("✅ Пользователь <code>%d</code> получил статус <b>Pro</b>!", targetID))
}

// handleDialogStep 多步对话：建槽两步、改风格一步
func (h *Handler) handleDialogStep(ctx context.Context, msg *tgbotapi.Message, state *dialog.State) error {
	user, err := h.usage.GetOrCreateUser(msg.From.ID)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(msg.Text)

	switch state.Step {
	case dialog.StepAwaitProfileName:
		if text == "" {
			return h.reply(msg.Chat.ID, "⚠️ Введите название чата:")
		}
		if len([]rune(text)) > 128 {
			return h.reply(msg.Chat.ID, "⚠️ Слишком длинное название (макс. 128 символов)")
		}

		state.Step = dialog.StepAwaitProfileStyle
		state.ProfileName = text
		if err := h.dialogs.Set(ctx, msg.Chat.ID, state); err != nil {
			return err
		}

		return h.reply(msg.Chat.ID, fmt.Sprintf(
			"✅ Название: <b>%s</b>\n\n"+
				"Шаг 2/2: Опишите стиль генерации.\n\n"+
				"<b>Примеры:</b>\n"+
				"• <i>Пиши мотивационные посты как лайф-коуч</i>\n"+
				"• <i>Генерируй IT-контент просто и с юмором</i>\n"+
				"• <i>Пиши как предприниматель, коротко и по делу</i>",
			text,
		))

	case dialog.StepAwaitProfileStyle:
		if text == "" {
			return h.reply(msg.Chat.ID, "⚠️ Опишите стиль генерации:")
		}

		profile, err := h.profiles.Create(user.ID, state.ProfileName, text)
		if err != nil {
			if errors.Is(err, service.ErrProfileLimit) {
				if clearErr := h.dialogs.Clear(ctx, msg.Chat.ID); clearErr != nil {
					log.Printf("Failed to clear dialog state: %v", clearErr)
				}
				return h.reply(msg.Chat.ID, fmt.Sprintf(
					"❌ Максимум %d чатов. Удалите один, чтобы создать новый.",
					h.cfg.Limits.MaxProfiles,
				))
			}
			return err
		}

		if err := h.dialogs.Clear(ctx, msg.Chat.ID); err != nil {
			log.Printf("Failed to clear dialog state: %v", err)
		}

		return h.replyWithKeyboard(msg.Chat.ID, fmt.Sprintf(
			"🎉 Чат <b>%s</b> создан и активирован!\n\n"+
				"🎭 Стиль: <i>%s</i>\n\n"+
				"Теперь просто отправьте тему для генерации поста.",
			profile.Name, truncate(profile.SystemPrompt, 100),
		), activeChatKeyboard())

	case dialog.StepAwaitNewStyle:
		if text == "" {
			return h.reply(msg.Chat.ID, "⚠️ Введите новый стиль:")
		}

		profile, err := h.profiles.UpdateStyle(user.ID, state.ProfileID, text)
		if err != nil {
			if clearErr := h.dialogs.Clear(ctx, msg.Chat.ID); clearErr != nil {
				log.Printf("Failed to clear dialog state: %v", clearErr)
			}
			if errors.Is(err, service.ErrProfileNotFound) {
				return h.reply(msg.Chat.ID, "⚠️ Чат не найден. Выберите через /chats")
			}
			return err
		}

		if err := h.dialogs.Clear(ctx, msg.Chat.ID); err != nil {
			log.Printf("Failed to clear dialog state: %v", err)
		}

		return h.replyWithKeyboard(msg.Chat.ID, fmt.Sprintf(
			"✅ Стиль чата <b>%s</b> обновлён!\n\n"+
				"🎭 Новый стиль: <i>%s</i>\n\n"+
				"Контекст очищен. Отправьте тему для генерации.",
			profile.Name, truncate(text, 100),
		), activeChatKeyboard())
	}

	// 未知状态直接丢弃
	return h.dialogs.Clear(ctx, msg.Chat.ID)
}

// handleTopic 普通文本按主题生成帖子
func (h *Handler) handleTopic(ctx context.Context, msg *tgbotapi.Message) error {
	topic := strings.TrimSpace(msg.Text)
	if topic == "" {
		return nil
	}

	if _, err := h.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("Failed to send chat action: %v", err)
	}

	result, err := h.generate.Generate(ctx, msg.From.ID, topic)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			return h.reply(msg.Chat.ID, fmt.Sprintf(
				"🚫 Дневной лимит в <b>%d</b> запросов исчерпан.\nПерейдите на <b>Pro</b> для безлимитного доступа!",
				h.cfg.Limits.DailyFreeLimit,
			))
		case errors.Is(err, service.ErrNoActiveProfile):
			user, uerr := h.usage.GetOrCreateUser(msg.From.ID)
			if uerr != nil {
				return uerr
			}
			kb, kerr := h.chatsKeyboard(user.ID)
			if kerr != nil {
				return kerr
			}
			return h.replyWithKeyboard(msg.Chat.ID, "⚠️ Сначала выберите или создайте чат:", kb)
		case errors.Is(err, service.ErrEmptyReply):
			return h.reply(msg.Chat.ID, "⚠️ ИИ вернул пустой ответ. Попробуйте переформулировать.")
		default:
			log.Printf("Generation failed for user %d: %v", msg.From.ID, err)
			return h.reply(msg.Chat.ID, "⚠️ Произошла ошибка при генерации. Попробуйте позже.")
		}
	}

	if len(result.Variants) > 1 {
		for i, variant := range result.Variants {
			if err := h.replyPlain(msg.Chat.ID, fmt.Sprintf("📝 Вариант %d\n\n%s", i+1, variant)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, chunk := range textutil.Chunk(result.Text, textutil.TelegramMessageLimit) {
		if err := h.replyPlain(msg.Chat.ID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) reply(chatID int64, text string) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	_, err := h.api.Send(m)
	return err
}

// replyPlain 生成结果不带格式发送，避免模型输出破坏 HTML 解析
func (h *Handler) replyPlain(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (h *Handler) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = kb
	_, err := h.api.Send(m)
	return err
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
