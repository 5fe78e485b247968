package main

import (
	"fmt"
	"log"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/api"
	"github.com/yunuszade97-del/treadsbot/internal/api/handler"
	"github.com/yunuszade97-del/treadsbot/internal/database"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/ai"
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
	authService := service.NewAuthService(userRepo, usageService, cfg)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	quotaHandler := handler.NewQuotaHandler(usageService)
	profileHandler := handler.NewProfileHandler(profileService)
	generateHandler := handler.NewGenerateHandler(generateService)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		quotaHandler,
		profileHandler,
		generateHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
