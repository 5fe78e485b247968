package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yunuszade97-del/treadsbot/internal/api/middleware"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/response"
	"github.com/yunuszade97-del/treadsbot/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// Create 新建对话槽
// POST /api/v1/profiles
func (h *ProfileHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.profileService.Create(userID, req.Name, req.Style)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileLimit):
			response.LimitError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	info, err := h.profileService.Info(userID, profile)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", info)
}

// List 列出当前用户的所有对话槽
// GET /api/v1/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	infos, err := h.profileService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, infos)
}

// Get 查询单个对话槽
// GET /api/v1/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profileID, err := parseIDParam(c)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	profile, err := h.profileService.Get(userID, profileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	info, err := h.profileService.Info(userID, profile)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// Activate 激活对话槽
// POST /api/v1/profiles/:id/activate
func (h *ProfileHandler) Activate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profileID, err := parseIDParam(c)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	profile, err := h.profileService.Activate(userID, profileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	info, err := h.profileService.Info(userID, profile)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "已切换", info)
}

// UpdateStyle 更新风格描述，同时清空上下文
// PUT /api/v1/profiles/:id/style
func (h *ProfileHandler) UpdateStyle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profileID, err := parseIDParam(c)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	var req dto.UpdateStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.profileService.UpdateStyle(userID, profileID, req.Style)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	info, err := h.profileService.Info(userID, profile)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "风格已更新", info)
}

// ClearContext 清空对话槽上下文
// POST /api/v1/profiles/:id/clear
func (h *ProfileHandler) ClearContext(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profileID, err := parseIDParam(c)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	if _, err := h.profileService.ClearContext(userID, profileID); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "上下文已清空", nil)
}

// Delete 删除对话槽
// DELETE /api/v1/profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profileID, err := parseIDParam(c)
	if err != nil {
		response.ParamError(c, "")
		return
	}

	if err := h.profileService.Delete(userID, profileID); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已删除", nil)
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
