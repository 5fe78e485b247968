package model

import (
	"time"
)

type User struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	TelegramID      int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	IsPro           bool      `gorm:"default:false;not null" json:"is_pro"`
	RequestsToday   int       `gorm:"default:0;not null" json:"requests_today"`
	LastRequestDate time.Time `gorm:"not null" json:"last_request_date"`
	ActiveProfileID *int64    `json:"active_profile_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
