package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/internal/api/middleware"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/response"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

type GenerateHandler struct {
	generateService *service.GenerateService
}

func NewGenerateHandler(generateService *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
	}
}

// Generate 按当前激活的履历生成帖子
// POST /api/v1/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	telegramID, ok := middleware.GetTelegramID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.generateService.Generate(c.Request.Context(), telegramID, req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			response.QuotaError(c, "")
		case errors.Is(err, service.ErrNoActiveProfile):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrEmptyReply):
			response.ServerError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}
