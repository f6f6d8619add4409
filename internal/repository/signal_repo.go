package repository

import (
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/redis"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PresenceEntry 在线会话条目，一个用户可同时持有多个客户端会话
type PresenceEntry struct {
	UserID    uint64
	SessionID string
}

// SignalRepo 短时效信号 (在线心跳 / 输入中) 的存取，底层为 Redis zset，
// score 是最后一次上报的毫秒时间戳，读取时按新鲜度窗口过滤
type SignalRepo interface {
	HeartbeatPresence(ctx context.Context, userID uint64, sessionID string, at time.Time) error
	EndPresence(ctx context.Context, userID uint64, sessionID string) error
	ActivePresence(ctx context.Context, since time.Time) ([]PresenceEntry, error)
	PingTyping(ctx context.Context, convID uint64, userID uint64, at time.Time) error
	ActiveTyping(ctx context.Context, convID uint64, since time.Time) ([]uint64, error)
}

type signalRepoImpl struct{}

func NewSignalRepo() SignalRepo {
	return &signalRepoImpl{}
}

func presenceMember(userID uint64, sessionID string) string {
	return strconv.FormatUint(userID, 10) + ":" + sessionID
}

func typingKey(convID uint64) string {
	return consts.TypingStateKeyPrefix + strconv.FormatUint(convID, 10)
}

func (s *signalRepoImpl) HeartbeatPresence(ctx context.Context, userID uint64, sessionID string, at time.Time) error {
	return redis.ZAddMember(ctx, consts.PresenceSessionsKey,
		float64(at.UnixMilli()), presenceMember(userID, sessionID))
}

func (s *signalRepoImpl) EndPresence(ctx context.Context, userID uint64, sessionID string) error {
	return redis.ZRem(ctx, consts.PresenceSessionsKey, presenceMember(userID, sessionID))
}

// ActivePresence 返回自 since 起有过心跳的会话条目
func (s *signalRepoImpl) ActivePresence(ctx context.Context, since time.Time) ([]PresenceEntry, error) {
	members, err := redis.ZRangeByScoreMin(ctx, consts.PresenceSessionsKey,
		fmt.Sprintf("%d", since.UnixMilli()))
	if err != nil {
		return nil, err
	}

	entries := make([]PresenceEntry, 0, len(members))
	for _, m := range members {
		idStr, sessionID, ok := strings.Cut(m, ":")
		if !ok {
			continue
		}
		uid, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, PresenceEntry{UserID: uid, SessionID: sessionID})
	}
	return entries, nil
}

func (s *signalRepoImpl) PingTyping(ctx context.Context, convID uint64, userID uint64, at time.Time) error {
	return redis.ZAddMember(ctx, typingKey(convID),
		float64(at.UnixMilli()), strconv.FormatUint(userID, 10))
}

// ActiveTyping 返回会话内自 since 起有过输入上报的用户
func (s *signalRepoImpl) ActiveTyping(ctx context.Context, convID uint64, since time.Time) ([]uint64, error) {
	members, err := redis.ZRangeByScoreMin(ctx, typingKey(convID),
		fmt.Sprintf("%d", since.UnixMilli()))
	if err != nil {
		return nil, err
	}

	uids := make([]uint64, 0, len(members))
	for _, m := range members {
		uid, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		uids = append(uids, uid)
	}
	return uids, nil
}
