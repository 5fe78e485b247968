package service

import (
	"time"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/repository"
)

// UnlimitedRemaining Pro 用户剩余次数的哨兵值
const UnlimitedRemaining = -1

type UsageService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
	now      func() time.Time // 可注入时钟，便于测试跨日回滚
}

func NewUsageService(userRepo *repository.UserRepository, cfg *config.Config) *UsageService {
	return &UsageService{
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock 替换时钟（仅测试使用）
func (s *UsageService) SetClock(now func() time.Time) {
	s.now = now
}

// Today 返回当前日历日（零点）
func (s *UsageService) Today() time.Time {
	return DateOf(s.now())
}

// GetOrCreateUser 首次接触时惰性建档
func (s *UsageService) GetOrCreateUser(telegramID int64) (*model.User, error) {
	return s.userRepo.GetOrCreateByTelegramID(telegramID, s.Today())
}

// CheckAndTrack 单一的放行判定点：放行则计数，拒绝则不落任何变更。
// 查找/跨日重置/递增/持久化在同一事务内完成，失败不产生半截递增。
func (s *UsageService) CheckAndTrack(telegramID int64) (bool, error) {
	today := s.Today() // 整次调用使用同一个"今天"
	privileged := s.cfg.IsAdmin(telegramID)
	limit := s.cfg.Limits.DailyFreeLimit

	var admitted bool
	err := s.userRepo.Transaction(func(txRepo *repository.UserRepository) error {
		user, err := txRepo.GetOrCreateByTelegramID(telegramID, today)
		if err != nil {
			return err
		}

		admitted = ApplyUsage(user, today, privileged, limit)
		if !admitted {
			return nil
		}

		return txRepo.UpdateFields(user.ID, map[string]interface{}{
			"requests_today":    user.RequestsToday,
			"last_request_date": user.LastRequestDate,
		})
	})
	if err != nil {
		return false, err
	}
	return admitted, nil
}

// Status 只读查询当前配额状态，不触发惰性重置
func (s *UsageService) Status(telegramID int64) (*dto.QuotaInfo, error) {
	user, err := s.GetOrCreateUser(telegramID)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.Limits.DailyFreeLimit
	info := &dto.QuotaInfo{
		IsPro:      user.IsPro,
		DailyLimit: limit,
	}

	if user.IsPro {
		info.Remaining = UnlimitedRemaining
		return info, nil
	}

	// 过期计数视为 0，实际重置留给下一次 CheckAndTrack
	used := 0
	if !DateOf(user.LastRequestDate).Before(DateOf(s.now())) {
		used = user.RequestsToday
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	info.Remaining = remaining
	return info, nil
}

// ApplyUsage 在内存中的用户状态上执行一次放行判定，返回是否放行。
// 纯状态变换，不触碰存储。
func ApplyUsage(u *model.User, today time.Time, privileged bool, limit int) bool {
	// 管理员无条件放行且不设上限；保持原始行为：此分支不做跨日重置
	if privileged {
		u.RequestsToday++
		u.LastRequestDate = today
		return true
	}

	// 跨日重置必须发生在限额检查之前
	if DateOf(u.LastRequestDate).Before(today) {
		u.RequestsToday = 0
		u.LastRequestDate = today
	}

	// Pro 不限量，但仍计数以便观测
	if u.IsPro {
		u.RequestsToday++
		return true
	}

	if u.RequestsToday < limit {
		u.RequestsToday++
		return true
	}

	return false
}

// DateOf 截断到日历日零点
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
