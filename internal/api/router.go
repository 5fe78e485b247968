package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/api/handler"
	"github.com/yunuszade97-del/treadsbot/internal/api/middleware"
)

type Router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	quotaHandler    *handler.QuotaHandler
	profileHandler  *handler.ProfileHandler
	generateHandler *handler.GenerateHandler
	cfg             *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	quotaHandler *handler.QuotaHandler,
	profileHandler *handler.ProfileHandler,
	generateHandler *handler.GenerateHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:     authHandler,
		userHandler:     userHandler,
		quotaHandler:    quotaHandler,
		profileHandler:  profileHandler,
		generateHandler: generateHandler,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/telegram", r.authHandler.TelegramLogin)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.GET("/quota", r.quotaHandler.GetQuota)
			}

			// 生成
			authenticated.POST("/generate", r.generateHandler.Generate)

			// 对话槽
			profiles := authenticated.Group("/profiles")
			{
				profiles.POST("", r.profileHandler.Create)
				profiles.GET("", r.profileHandler.List)
				profiles.GET("/:id", r.profileHandler.Get)
				profiles.DELETE("/:id", r.profileHandler.Delete)
				profiles.POST("/:id/activate", r.profileHandler.Activate)
				profiles.PUT("/:id/style", r.profileHandler.UpdateStyle)
				profiles.POST("/:id/clear", r.profileHandler.ClearContext)
			}

			// 管理端
			admin := authenticated.Group("/admin")
			admin.Use(middleware.AdminOnly(r.cfg))
			{
				admin.POST("/promote", r.userHandler.Promote)
				admin.POST("/demote", r.userHandler.Demote)
				admin.GET("/stats", r.userHandler.Stats)
			}
		}
	}

	return engine
}
