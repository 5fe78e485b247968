package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/bot"
	"github.com/yunuszade97-del/treadsbot/internal/database"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/ai"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/dialog"
	"github.com/yunuszade97-del/treadsbot/internal/repository"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// 初始化 AI 客户端
	aiClient := ai.NewClient(&cfg.AI)

	// 初始化 Service
	usageService := service.NewUsageService(userRepo, cfg)
	userService := service.NewUserService(userRepo, cfg)
	profileService := service.NewProfileService(userRepo, profileRepo, cfg)
	generateService := service.NewGenerateService(usageService, profileService, aiClient, cfg)

	// 对话状态存 Redis，重启不丢
	dialogStore := dialog.NewStore(rdb)

	b, err := bot.NewBot(cfg, usageService, userService, profileService, generateService, dialogStore)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down bot")
		cancel()
	}()

	log.Println("Bot starting")
	b.Run(ctx)
}
