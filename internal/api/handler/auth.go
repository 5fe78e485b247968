package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/response"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// TelegramLogin Telegram Login Widget 登录
// POST /api/v1/auth/telegram
func (h *AuthHandler) TelegramLogin(c *gin.Context) {
	var req dto.TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.TelegramLogin(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAuthData):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrAuthExpired):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
