package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/security"
	"Ripple/internal/pkg/util"
	"Ripple/internal/repository"
	"context"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

const maxDiscoveryLimit = 100

type UserService interface {
	ResolveOrCreate(ctx context.Context, claims *security.IdentityClaims) (*model.User, error)
	Lookup(ctx context.Context, claims *security.IdentityClaims) (*model.User, error)
	ListForDiscovery(ctx context.Context, callerID uint64, query string, limit int) ([]*dto.UserDTO, error)
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

// displayNameFromClaims 按优先级从身份声明推导展示名
func displayNameFromClaims(claims *security.IdentityClaims) string {
	for _, candidate := range []string{claims.Name, claims.Nickname, claims.PreferredUsername, claims.Email} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "Unknown"
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// ResolveOrCreate 幂等 upsert：首次见到 subject 时建档，之后每次回刷资料字段
func (s *UserServiceImpl) ResolveOrCreate(ctx context.Context, claims *security.IdentityClaims) (*model.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	existing, err := s.userRepo.GetUserBySubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Name = displayNameFromClaims(claims)
		existing.Email = optional(claims.Email)
		existing.AvatarURL = optional(claims.Picture)
		if err = s.userRepo.UpdateProfile(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	user := &model.User{
		SubjectID: claims.Subject,
		Name:      displayNameFromClaims(claims),
		Email:     optional(claims.Email),
		AvatarURL: optional(claims.Picture),
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Lookup 只读查询：principal 缺失或尚未建档时返回 nil，调用方视作"无数据"而非错误
func (s *UserServiceImpl) Lookup(ctx context.Context, claims *security.IdentityClaims) (*model.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, nil
	}
	return s.userRepo.GetUserBySubject(ctx, claims.Subject)
}

// ListForDiscovery 名称模糊检索其他用户，供发起会话时选人
func (s *UserServiceImpl) ListForDiscovery(ctx context.Context, callerID uint64, query string, limit int) ([]*dto.UserDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxDiscoveryLimit {
		limit = maxDiscoveryLimit
	}

	users, err := s.userRepo.SearchByName(ctx, callerID, query, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		d := &dto.UserDTO{}
		if err := copier.Copy(d, u); err != nil {
			return nil, err
		}
		d.AvatarColor = util.ColorFor(strconv.FormatUint(u.ID, 10))
		res = append(res, d)
	}
	return res, nil
}
