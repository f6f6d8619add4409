package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 定义 Context 中的 Key
const TraceIDKey = "trace_id"

// SubjectKey 鉴权中间件写入的身份主体 Key
const SubjectKey = "subject"

// ContextHandler 包装器，用于从 ctx 中提取 trace_id 与身份主体
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String("trace_id", traceID))
		}
		if subject, ok := ctx.Value(SubjectKey).(string); ok && subject != "" {
			r.AddAttrs(log.String("subject", subject))
		}
	}
	return h.Handler.Handle(ctx, r)
}
