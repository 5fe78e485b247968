package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/dialog"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

// Bot Telegram 长轮询入口
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

func NewBot(
	cfg *config.Config,
	usage *service.UsageService,
	users *service.UserService,
	profiles *service.ProfileService,
	generate *service.GenerateService,
	dialogs *dialog.Store,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(api, usage, users, profiles, generate, dialogs, cfg)

	return &Bot{
		api:     api,
		handler: handler,
	}, nil
}

// Run 拉取更新并分发，直到 ctx 取消
func (b *Bot) Run(ctx context.Context) {
	log.Printf("Bot authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go func(update tgbotapi.Update) {
				if err := b.handler.HandleUpdate(ctx, update); err != nil {
					log.Printf("Failed to handle update: %v", err)
				}
			}(update)
		}
	}
}
