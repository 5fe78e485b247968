package service

import (
	"context"
	"errors"
	"log"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/textutil"
)

var (
	ErrQuotaExceeded   = errors.New("今日免费请求次数已用完")
	ErrNoActiveProfile = errors.New("没有激活的对话槽")
	ErrEmptyReply      = errors.New("AI 返回了空回复")
)

// ThreadGenerator 外部模型调用方，无状态、可重入
type ThreadGenerator interface {
	GenerateThread(ctx context.Context, topic, systemPrompt string, history []model.Message) (string, error)
}

type GenerateService struct {
	usage     *UsageService
	profiles  *ProfileService
	generator ThreadGenerator
	cfg       *config.Config
}

func NewGenerateService(usage *UsageService, profiles *ProfileService, generator ThreadGenerator, cfg *config.Config) *GenerateService {
	return &GenerateService{
		usage:     usage,
		profiles:  profiles,
		generator: generator,
		cfg:       cfg,
	}
}

// Generate 一次完整的生成流程：配额判定 → 读取上下文 → 调用模型 → 写回上下文。
// 配额在模型调用之前计入，生成失败不退还。
func (s *GenerateService) Generate(ctx context.Context, telegramID int64, topic string) (*dto.GenerateResult, error) {
	allowed, err := s.usage.CheckAndTrack(telegramID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrQuotaExceeded
	}

	user, err := s.usage.GetOrCreateUser(telegramID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetActive(user.ID)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.GenerateThread(ctx, topic, profile.SystemPrompt, profile.Context())
	if err != nil {
		// 模型失败原样上抛，上下文保持不变
		log.Printf("LLM generation failed for user %d: %v", telegramID, err)
		return nil, err
	}

	reply = textutil.StripMarkdown(reply)
	if reply == "" {
		return nil, ErrEmptyReply
	}

	if err := s.profiles.AppendExchange(profile.ID, topic, reply); err != nil {
		return nil, err
	}

	return &dto.GenerateResult{
		ProfileName: profile.Name,
		Text:        reply,
		Variants:    textutil.SplitVariants(reply),
	}, nil
}
