package model

import (
	"encoding/json"
	"time"
)

// DefaultMaxContextPairs 每个对话槽保留的上下文轮数（一轮 = 用户 + 助手两条）
const DefaultMaxContextPairs = 10

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 上下文中的单条消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Profile 对话槽：带独立风格设定和上下文记忆的角色
type Profile struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	SystemPrompt string    `gorm:"type:text;not null" json:"system_prompt"`
	ContextJSON  string    `gorm:"type:text;default:'[]';not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Context 反序列化存储的上下文；数据损坏时返回空序列而不是报错
func (p *Profile) Context() []Message {
	raw := p.ContextJSON
	if raw == "" {
		raw = "[]"
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return []Message{}
	}
	if msgs == nil {
		return []Message{}
	}
	return msgs
}

// AppendExchange 追加一轮对话并裁剪到上限，持久化由调用方负责
func (p *Profile) AppendExchange(userText, assistantText string) {
	ctx := p.Context()
	ctx = append(ctx,
		Message{Role: RoleUser, Content: userText},
		Message{Role: RoleAssistant, Content: assistantText},
	)
	ctx = TrimContext(ctx, DefaultMaxContextPairs)

	data, err := json.Marshal(ctx)
	if err != nil {
		return
	}
	p.ContextJSON = string(data)
}

// ClearContext 清空上下文
func (p *Profile) ClearContext() {
	p.ContextJSON = "[]"
}

// TrimContext 从最旧一端整条丢弃，保留最近 maxPairs 轮。
// 追加总是成对发生，所以裁剪后序列始终偶数长且 user/assistant 交替。
func TrimContext(msgs []Message, maxPairs int) []Message {
	maxEntries := maxPairs * 2
	if len(msgs) <= maxEntries {
		return msgs
	}
	return msgs[len(msgs)-maxEntries:]
}
