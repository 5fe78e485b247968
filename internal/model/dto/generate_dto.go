package dto

// GenerateRequest 生成帖子
type GenerateRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// GenerateResult 生成结果；模型用 === 分隔多个变体时逐条返回
type GenerateResult struct {
	ProfileName string   `json:"profile_name"`
	Text        string   `json:"text"`
	Variants    []string `json:"variants"`
}
