package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yunuszade97-del/treadsbot/internal/model"
)

var telegramIDSeq int64 = 100000

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	now := time.Now()
	user := &model.User{
		TelegramID:      atomic.AddInt64(&telegramIDSeq, 1),
		IsPro:           false,
		RequestsToday:   0,
		LastRequestDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithTelegramID 设置 Telegram ID
func WithTelegramID(telegramID int64) func(*model.User) {
	return func(u *model.User) {
		u.TelegramID = telegramID
	}
}

// WithPro 设置 Pro 状态
func WithPro() func(*model.User) {
	return func(u *model.User) {
		u.IsPro = true
	}
}

// WithRequestsToday 设置今日已用次数
func WithRequestsToday(n int) func(*model.User) {
	return func(u *model.User) {
		u.RequestsToday = n
	}
}

// WithLastRequestDate 设置最近请求日期
func WithLastRequestDate(date time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastRequestDate = date
	}
}

// TestProfile 创建测试对话槽
func TestProfile(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Profile)) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Chat %d", time.Now().UnixNano()%10000),
		SystemPrompt: "Пиши коротко и по делу",
		ContextJSON:  "[]",
	}

	for _, opt := range opts {
		opt(profile)
	}

	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return profile
}

// WithName 设置对话槽名称
func WithName(name string) func(*model.Profile) {
	return func(p *model.Profile) {
		p.Name = name
	}
}

// WithSystemPrompt 设置风格描述
func WithSystemPrompt(prompt string) func(*model.Profile) {
	return func(p *model.Profile) {
		p.SystemPrompt = prompt
	}
}

// WithContextJSON 直接设置存储的上下文
func WithContextJSON(raw string) func(*model.Profile) {
	return func(p *model.Profile) {
		p.ContextJSON = raw
	}
}
