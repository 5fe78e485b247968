package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/jwt"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/response"
)

const (
	UserIDKey     = "userID"
	TelegramIDKey = "telegramID"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TelegramIDKey, claims.TelegramID)
		c.Next()
	}
}

// AdminOnly 管理员检查中间件，必须在 Auth 之后使用
func AdminOnly(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		telegramID, ok := GetTelegramID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		if !cfg.IsAdmin(telegramID) {
			response.PermissionError(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetTelegramID 从上下文获取 Telegram ID
func GetTelegramID(c *gin.Context) (int64, bool) {
	telegramID, exists := c.Get(TelegramIDKey)
	if !exists {
		return 0, false
	}
	id, ok := telegramID.(int64)
	return id, ok
}
