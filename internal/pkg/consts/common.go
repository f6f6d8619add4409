package consts

import "time"

const (
	MimePrefixImage = "image/"
	MimePrefixVideo = "video/"
	MimePrefixAudio = "audio/"
)

// 会话类型
const (
	ConvTypeDirect int8 = 1
	ConvTypeGroup  int8 = 2
)

// 成员角色
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// 消息类型
const (
	MsgTypeText  = 1
	MsgTypeFile  = 2
	MsgTypeVoice = 3
)

const (
	// SnippetMaxLen 会话预览最大长度 (按字符计)
	SnippetMaxLen = 120
	// DeletedSnippet 最后一条消息被撤回后的固定预览
	DeletedSnippet = "This message was deleted"
	// VoiceSnippet 语音消息固定预览
	VoiceSnippet = "🎤 Voice message"
	// FileSnippetPrefix 文件消息预览前缀
	FileSnippetPrefix = "📎 "
)

const (
	// MaxUploadBytes 单附件大小上限
	MaxUploadBytes = 20 * 1024 * 1024
	// MaxVoiceDurationMs 语音时长上限
	MaxVoiceDurationMs = 10 * 60 * 1000
)

const (
	// PresenceWindow 在线判定窗口
	PresenceWindow = 15 * time.Second
	// TypingWindow 输入中判定窗口
	TypingWindow = 2 * time.Second
	// SignalRetention 信号条目在 Redis 中的保留时长，超出由定时任务清理
	SignalRetention = 24 * time.Hour
)

// AllowedReactions 表情回应的固定枚举
var AllowedReactions = []string{"👍", "❤️", "😂", "😮", "😢"}

// AllowedDocumentMimes 附件白名单中 image/video/audio 之外的文档类型
var AllowedDocumentMimes = []string{
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}
