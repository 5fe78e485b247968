package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/repository"
)

var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrAlreadyPro   = errors.New("用户已经是 Pro")
	ErrNotPro       = errors.New("用户不是 Pro")
)

type UserService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewUserService(userRepo *repository.UserRepository, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// GetByTelegramID 查询用户；未注册返回 ErrUserNotFound
func (s *UserService) GetByTelegramID(telegramID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return buildUserInfo(user), nil
}

// Promote 授予 Pro。目标必须已经同 bot 有过交互（存在档案）。
func (s *UserService) Promote(telegramID int64) error {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsPro {
		return ErrAlreadyPro
	}
	return s.userRepo.SetPro(telegramID, true)
}

// Demote 撤销 Pro
func (s *UserService) Demote(telegramID int64) error {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsPro {
		return ErrNotPro
	}
	return s.userRepo.SetPro(telegramID, false)
}

// Stats 管理端统计
func (s *UserService) Stats() (*dto.StatsInfo, error) {
	total, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	pro, err := s.userRepo.CountPro()
	if err != nil {
		return nil, err
	}
	return &dto.StatsInfo{TotalUsers: total, ProUsers: pro}, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:              user.ID,
		TelegramID:      user.TelegramID,
		IsPro:           user.IsPro,
		ActiveProfileID: user.ActiveProfileID,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
	}
}
