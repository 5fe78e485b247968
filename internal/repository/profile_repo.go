package repository

import (
	"gorm.io/gorm"

	"github.com/yunuszade97-del/treadsbot/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Transaction 在单个事务内执行 fn，fn 拿到绑定事务的仓库
func (r *ProfileRepository) Transaction(fn func(txRepo *ProfileRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ProfileRepository{db: tx})
	})
}

// Users 返回绑定同一连接的用户仓库。在 Transaction 回调内调用时
// 得到的是事务内仓库，跨表写入共用同一个事务。
func (r *ProfileRepository) Users() *UserRepository {
	return &UserRepository{db: r.db}
}

func (r *ProfileRepository) Create(profile *model.Profile) error {
	return r.db.Create(profile).Error
}

func (r *ProfileRepository) GetByID(id int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByIDForUser 按归属查询，防止跨用户访问他人对话槽
func (r *ProfileRepository) GetByIDForUser(id, userID int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) ListByUser(userID int64) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Profile{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *ProfileRepository) Update(profile *model.Profile) error {
	return r.db.Save(profile).Error
}

func (r *ProfileRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Profile{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ProfileRepository) Delete(id int64) error {
	return r.db.Delete(&model.Profile{}, id).Error
}

func (r *ProfileRepository) DeleteByUser(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.Profile{}).Error
}
