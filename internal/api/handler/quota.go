package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/internal/api/middleware"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/response"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

type QuotaHandler struct {
	usageService *service.UsageService
}

func NewQuotaHandler(usageService *service.UsageService) *QuotaHandler {
	return &QuotaHandler{
		usageService: usageService,
	}
}

// GetQuota 获取当前用户配额信息
// GET /api/v1/user/quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	telegramID, ok := middleware.GetTelegramID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.usageService.Status(telegramID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}
