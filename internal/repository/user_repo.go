package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error)
	GetUserBySubject(ctx context.Context, subject string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, user *model.User) error
	SearchByName(ctx context.Context, excludeID uint64, query string, limit int) ([]*model.User, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).First(user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

func (s *UserRepoImpl) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0)
	result := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

// GetUserBySubject 按身份提供方 subject 查询，未命中返回 nil 而非错误
func (s *UserRepoImpl) GetUserBySubject(ctx context.Context, subject string) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).Where("subject_id = ?", subject).First(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// UpdateProfile 回刷身份提供方下发的资料字段
func (s *UserRepoImpl) UpdateProfile(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      user.Email,
			"avatar_url": user.AvatarURL,
		}).Error
}

// SearchByName 按名称模糊检索其他用户，query 为空时返回全部，按名称升序
func (s *UserRepoImpl) SearchByName(ctx context.Context, excludeID uint64, query string, limit int) ([]*model.User, error) {
	users := make([]*model.User, 0)
	tx := s.db.WithContext(ctx).Where("id <> ?", excludeID)
	if q := strings.TrimSpace(query); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	result := tx.Order("name ASC").Limit(limit).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}
