package consts

const (
	// PresenceSessionsKey 全量在线会话 zset，member 为 uid:sessionID，score 为毫秒时间戳
	PresenceSessionsKey = "signal:presence:sessions"
	// TypingStateKeyPrefix 每个会话一个 zset，member 为 uid，score 为毫秒时间戳
	TypingStateKeyPrefix = "signal:typing:"
	// TypingStateKeyPattern 清理任务扫描用
	TypingStateKeyPattern = "signal:typing:*"
	// IMUserKey 新消息推送的用户个人频道前缀
	IMUserKey = "im:user:"
)
