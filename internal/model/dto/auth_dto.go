package dto

// TelegramAuthRequest Telegram Login Widget 回调数据
type TelegramAuthRequest struct {
	ID        int64  `json:"id" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date" binding:"required"`
	Hash      string `json:"hash" binding:"required"`
}

// AuthResponse 登录成功返回
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}
