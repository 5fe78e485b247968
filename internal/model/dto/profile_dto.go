package dto

// ProfileInfo 对话槽信息
type ProfileInfo struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
	Active       bool   `json:"active"`
	ContextTurns int    `json:"context_turns"` // 当前记忆的消息条数
	CreatedAt    string `json:"created_at"`
}

// CreateProfileRequest 创建对话槽
type CreateProfileRequest struct {
	Name  string `json:"name" binding:"required,max=128"`
	Style string `json:"style" binding:"required"`
}

// UpdateStyleRequest 修改风格描述（会清空上下文）
type UpdateStyleRequest struct {
	Style string `json:"style" binding:"required"`
}
