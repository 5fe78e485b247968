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
	ErrProfileLimit    = errors.New("对话槽数量已达上限")
	ErrProfileNotFound = errors.New("对话槽不存在")
)

type ProfileService struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	cfg         *config.Config
}

func NewProfileService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, cfg *config.Config) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		cfg:         cfg,
	}
}

// Create 新建对话槽并设为当前激活；超过上限返回 ErrProfileLimit
func (s *ProfileService) Create(userID int64, name, style string) (*model.Profile, error) {
	count, err := s.profileRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.cfg.Limits.MaxProfiles) {
		return nil, ErrProfileLimit
	}

	profile := &model.Profile{
		UserID:       userID,
		Name:         name,
		SystemPrompt: style,
		ContextJSON:  "[]",
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetActiveProfile(userID, &profile.ID); err != nil {
		return nil, err
	}

	return profile, nil
}

// List 用户的全部对话槽
func (s *ProfileService) List(userID int64) ([]dto.ProfileInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.ProfileInfo, 0, len(profiles))
	for i := range profiles {
		infos = append(infos, buildProfileInfo(&profiles[i], user.ActiveProfileID))
	}
	return infos, nil
}

// Get 按归属查询单个对话槽
func (s *ProfileService) Get(userID, profileID int64) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByIDForUser(profileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetActive 当前激活的对话槽；未激活返回 ErrNoActiveProfile
func (s *ProfileService) GetActive(userID int64) (*model.Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.ActiveProfileID == nil {
		return nil, ErrNoActiveProfile
	}

	profile, err := s.profileRepo.GetByIDForUser(*user.ActiveProfileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, err
	}
	return profile, nil
}

// Activate 切换当前激活的对话槽
func (s *ProfileService) Activate(userID, profileID int64) (*model.Profile, error) {
	profile, err := s.Get(userID, profileID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetActiveProfile(userID, &profile.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateStyle 替换风格描述。旧上下文对新风格不再有意义，一并清空。
func (s *ProfileService) UpdateStyle(userID, profileID int64, style string) (*model.Profile, error) {
	profile, err := s.Get(userID, profileID)
	if err != nil {
		return nil, err
	}

	profile.SystemPrompt = style
	profile.ClearContext()
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ClearContext 清空对话槽的上下文记忆
func (s *ProfileService) ClearContext(userID, profileID int64) (*model.Profile, error) {
	profile, err := s.Get(userID, profileID)
	if err != nil {
		return nil, err
	}

	profile.ClearContext()
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Delete 删除对话槽；若它是当前激活槽，先清除激活引用
func (s *ProfileService) Delete(userID, profileID int64) error {
	profile, err := s.Get(userID, profileID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	return s.profileRepo.Transaction(func(txRepo *repository.ProfileRepository) error {
		if user.ActiveProfileID != nil && *user.ActiveProfileID == profile.ID {
			if err := txRepo.Users().SetActiveProfile(userID, nil); err != nil {
				return err
			}
		}
		return txRepo.Delete(profile.ID)
	})
}

// AppendExchange 把一轮完成的对话写入上下文。
// 在事务内重读行再追加，避免覆盖并发写入（按行读改写是唯一的保护）。
func (s *ProfileService) AppendExchange(profileID int64, userText, assistantText string) error {
	return s.profileRepo.Transaction(func(txRepo *repository.ProfileRepository) error {
		profile, err := txRepo.GetByID(profileID)
		if err != nil {
			return err
		}
		profile.AppendExchange(userText, assistantText)
		return txRepo.Update(profile)
	})
}

// Info 构造单个对话槽的返回结构，Active 依据用户当前激活状态
func (s *ProfileService) Info(userID int64, p *model.Profile) (*dto.ProfileInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	info := buildProfileInfo(p, user.ActiveProfileID)
	return &info, nil
}

func buildProfileInfo(p *model.Profile, activeID *int64) dto.ProfileInfo {
	return dto.ProfileInfo{
		ID:           p.ID,
		Name:         p.Name,
		SystemPrompt: p.SystemPrompt,
		Active:       activeID != nil && *activeID == p.ID,
		ContextTurns: len(p.Context()),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
