package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/repository"
	"context"
	"time"
)

// SignalService 在线心跳与输入中信号服务接口定义
type SignalService interface {
	Heartbeat(ctx context.Context, callerID uint64, sessionID string) error
	EndSession(ctx context.Context, callerID uint64, sessionID string) error
	OnlineUserIds(ctx context.Context) ([]uint64, error)
	Ping(ctx context.Context, callerID uint64, convID uint64) error
	ListActive(ctx context.Context, callerID uint64, convID uint64) ([]*dto.TypingUserDTO, error)
}

type signalServiceImpl struct {
	signalRepo repository.SignalRepo
	convRepo   repository.ConversationRepo
	userRepo   repository.UserRepo
	now        func() time.Time
}

func NewSignalService(signalRepo repository.SignalRepo, convRepo repository.ConversationRepo, userRepo repository.UserRepo) SignalService {
	return &signalServiceImpl{
		signalRepo: signalRepo,
		convRepo:   convRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// Heartbeat 刷新 (用户, 会话端) 的在线时间戳
func (s *signalServiceImpl) Heartbeat(ctx context.Context, callerID uint64, sessionID string) error {
	if sessionID == "" {
		return ErrParamInvalid
	}
	return s.signalRepo.HeartbeatPresence(ctx, callerID, sessionID, s.now())
}

// EndSession 主动下线，删除对应成员即可，重复调用无害
func (s *signalServiceImpl) EndSession(ctx context.Context, callerID uint64, sessionID string) error {
	if sessionID == "" {
		return ErrParamInvalid
	}
	return s.signalRepo.EndPresence(ctx, callerID, sessionID)
}

// OnlineUserIds 窗口内有心跳的去重用户集合
func (s *signalServiceImpl) OnlineUserIds(ctx context.Context) ([]uint64, error) {
	entries, err := s.signalRepo.ActivePresence(ctx, s.now().Add(-consts.PresenceWindow))
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(entries))
	res := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		res = append(res, e.UserID)
	}
	return res, nil
}

// Ping 上报输入中状态，先校验成员资格
func (s *signalServiceImpl) Ping(ctx context.Context, callerID uint64, convID uint64) error {
	membership, err := s.convRepo.GetMembership(ctx, convID, callerID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrForbidden
	}
	return s.signalRepo.PingTyping(ctx, convID, callerID, s.now())
}

// ListActive 窗口内输入中的其他成员，附显示名
func (s *signalServiceImpl) ListActive(ctx context.Context, callerID uint64, convID uint64) ([]*dto.TypingUserDTO, error) {
	membership, err := s.convRepo.GetMembership(ctx, convID, callerID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrForbidden
	}

	uids, err := s.signalRepo.ActiveTyping(ctx, convID, s.now().Add(-consts.TypingWindow))
	if err != nil {
		return nil, err
	}

	others := make([]uint64, 0, len(uids))
	for _, uid := range uids {
		if uid == callerID {
			continue
		}
		others = append(others, uid)
	}
	if len(others) == 0 {
		return []*dto.TypingUserDTO{}, nil
	}

	users, err := s.userRepo.GetUserByIds(ctx, others)
	if err != nil {
		return nil, err
	}
	names := make(map[uint64]string, len(users))
	for _, u := range users {
		names[u.ID] = displayTitleFor(u.Name, u.ID)
	}

	res := make([]*dto.TypingUserDTO, 0, len(others))
	for _, uid := range others {
		name, ok := names[uid]
		if !ok {
			name = displayTitleFor("", uid)
		}
		res = append(res, &dto.TypingUserDTO{UserID: uid, Name: name})
	}
	return res, nil
}
