package job

import (
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/logger"
	"Ripple/internal/pkg/redis"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SignalCleanJob 清理超出保留期的在线与输入中信号条目。
// 读取路径本身按时间窗过滤，这里只是防止 zset 无限膨胀。
type SignalCleanJob struct{}

func NewSignalCleanJob() *SignalCleanJob {
	return &SignalCleanJob{}
}

func (s *SignalCleanJob) Run() {
	traceID := "job-signal-clean-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	cutoff := strconv.FormatInt(time.Now().Add(-consts.SignalRetention).UnixMilli(), 10)

	removed, err := redis.ZRemRangeByScoreMax(ctx, consts.PresenceSessionsKey, cutoff)
	if err != nil {
		log.ErrorContext(ctx, "clean presence sessions error", "err", err)
	}

	keys, err := redis.ScanKeys(ctx, consts.TypingStateKeyPattern)
	if err != nil {
		log.ErrorContext(ctx, "scan typing keys error", "err", err)
		return
	}
	for _, key := range keys {
		n, err := redis.ZRemRangeByScoreMax(ctx, key, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "clean typing state error", "key", key, "err", err)
			continue
		}
		removed += n
	}

	log.InfoContext(ctx, "SignalCleanJob finished", "removed", removed, "typing_keys", len(keys))
}
