package dto

// UserInfo 用户信息
type UserInfo struct {
	ID              int64  `json:"id"`
	TelegramID      int64  `json:"telegram_id"`
	IsPro           bool   `json:"is_pro"`
	ActiveProfileID *int64 `json:"active_profile_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// QuotaInfo 配额状态，Remaining 为 -1 表示不限量
type QuotaInfo struct {
	IsPro      bool `json:"is_pro"`
	Remaining  int  `json:"remaining"`
	DailyLimit int  `json:"daily_limit"`
}

// StatsInfo 管理端统计
type StatsInfo struct {
	TotalUsers int64 `json:"total_users"`
	ProUsers   int64 `json:"pro_users"`
}

// PromoteRequest 授予/撤销 Pro
type PromoteRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
}
