package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yunuszade97-del/treadsbot/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Transaction 在单个事务内执行 fn，fn 拿到绑定事务的仓库
func (r *UserRepository) Transaction(fn func(txRepo *UserRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateByTelegramID 首次接触时惰性建档。并发重复创建由 telegram_id
// 唯一索引兜底：创建失败视为已存在，回退为查询。
func (r *UserRepository) GetOrCreateByTelegramID(telegramID int64, today time.Time) (*model.User, error) {
	user, err := r.GetByTelegramID(telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &model.User{
		TelegramID:      telegramID,
		IsPro:           false,
		RequestsToday:   0,
		LastRequestDate: today,
	}
	if createErr := r.db.Create(user).Error; createErr != nil {
		return r.GetByTelegramID(telegramID)
	}
	return user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// SetActiveProfile 设置当前激活的对话槽，profileID 为 nil 表示清除
func (r *UserRepository) SetActiveProfile(id int64, profileID *int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("active_profile_id", profileID).Error
}

func (r *UserRepository) SetPro(telegramID int64, isPro bool) error {
	result := r.db.Model(&model.User{}).Where("telegram_id = ?", telegramID).
		Update("is_pro", isPro)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) CountPro() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("is_pro = ?", true).Count(&count).Error
	return count, err
}
