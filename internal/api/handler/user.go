package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/internal/api/middleware"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/response"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile 获取当前用户信息
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	telegramID, ok := middleware.GetTelegramID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.userService.GetByTelegramID(telegramID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// Promote 授予 Pro
// POST /api/v1/admin/promote
func (h *UserHandler) Promote(c *gin.Context) {
	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.Promote(req.TelegramID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyPro):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已授予 Pro", nil)
}

// Demote 撤销 Pro
// POST /api/v1/admin/demote
func (h *UserHandler) Demote(c *gin.Context) {
	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.Demote(req.TelegramID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotPro):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已撤销 Pro", nil)
}

// Stats 用户统计
// GET /api/v1/admin/stats
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.userService.Stats()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, stats)
}
