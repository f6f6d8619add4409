package dto

import "time"

// CreateDirectReq 创建或获取单聊请求
type CreateDirectReq struct {
	OtherUserID uint64 `json:"other_user_id" binding:"required"`
}

// CreateGroupReq 创建群聊请求
type CreateGroupReq struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []uint64 `json:"member_ids"`
}

// ConversationIDDTO 创建类操作的返回体
type ConversationIDDTO struct {
	ConversationID uint64 `json:"conversation_id"`
}

// ConversationListItemDTO 会话列表项投影
type ConversationListItemDTO struct {
	ConversationID     uint64     `json:"conversation_id"`
	Type               int8       `json:"type"` // 1-单聊, 2-群聊
	Title              string     `json:"title"`
	AvatarURL          *string    `json:"avatarUrl,omitempty"`
	AvatarColor        string     `json:"avatarColor"`
	MemberCount        int        `json:"memberCount"`
	LastMessageAt      *time.Time `json:"lastMessageAt"`
	LastMessageSnippet string     `json:"lastMessageSnippet"`
	UnreadCount        uint64     `json:"unreadCount"`
	DirectOtherUserID  *uint64    `json:"directOtherUserId,omitempty"` // 仅单聊
}

// ConversationDetailDTO 单会话详情及成员
type ConversationDetailDTO struct {
	ConversationID     uint64     `json:"conversation_id"`
	Type               int8       `json:"type"`
	Name               *string    `json:"name,omitempty"`
	CreatedBy          uint64     `json:"createdBy"`
	LastMessageAt      *time.Time `json:"lastMessageAt"`
	LastMessageSnippet string     `json:"lastMessageSnippet"`
	Members            []*UserDTO `json:"members"`
}

// SendMessageReq 发送文本消息请求体
type SendMessageReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
	Body           string `json:"body" binding:"required"`
}

// FileMetaDTO 文件附件元数据，字节已由客户端直传对象存储
type FileMetaDTO struct {
	StorageKey string `json:"storage_key" binding:"required"`
	FileName   string `json:"file_name" binding:"required"`
	FileSize   int64  `json:"file_size" binding:"required"`
	MimeType   string `json:"mime_type" binding:"required"`
}

// SendFileReq 发送文件消息请求体
type SendFileReq struct {
	ConversationID uint64      `json:"conversation_id" binding:"required"`
	File           FileMetaDTO `json:"file" binding:"required"`
}

// VoiceMetaDTO 语音附件元数据
type VoiceMetaDTO struct {
	StorageKey string `json:"storage_key" binding:"required"`
	DurationMs int64  `json:"duration_ms" binding:"required"`
	MimeType   string `json:"mime_type" binding:"required"`
}

// SendVoiceReq 发送语音消息请求体
type SendVoiceReq struct {
	ConversationID uint64       `json:"conversation_id" binding:"required"`
	Voice          VoiceMetaDTO `json:"voice" binding:"required"`
}

// ReactionCountDTO 单个表情的聚合计数
type ReactionCountDTO struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// MessageDTO 消息明细响应，含发送者、回应聚合与附件链接
type MessageDTO struct {
	ID             string             `json:"id"`
	ConversationID uint64             `json:"conversation_id"`
	SenderID       uint64             `json:"sender_id"`
	Sender         *UserDTO           `json:"sender,omitempty"`
	MsgType        int                `json:"msg_type"` // 1-文本, 2-文件, 3-语音
	Body           string             `json:"body"`
	FileName       string             `json:"fileName,omitempty"`
	FileSize       int64              `json:"fileSize,omitempty"`
	MimeType       string             `json:"mimeType,omitempty"`
	DurationMs     int64              `json:"durationMs,omitempty"`
	FileURL        string             `json:"fileUrl,omitempty"`
	VoiceURL       string             `json:"voiceUrl,omitempty"`
	ReactionCounts []ReactionCountDTO `json:"reactionCounts"`
	MyReactions    []string           `json:"myReactions"`
	CreatedAt      time.Time          `json:"createdAt"`
	DeletedAt      *time.Time         `json:"deletedAt,omitempty"`
}

// UploadTicketDTO 附件直传凭证
type UploadTicketDTO struct {
	UploadURL  string `json:"upload_url"`
	StorageKey string `json:"storage_key"`
}

// UploadURLReq 申请附件直传凭证
type UploadURLReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
	FileName       string `json:"file_name"`
}

// ToggleReactionReq 表情回应开关请求
type ToggleReactionReq struct {
	MessageID string `json:"message_id" binding:"required"`
	Emoji     string `json:"emoji" binding:"required"`
}

// ToggleReactionDTO 开关结果
type ToggleReactionDTO struct {
	Toggled string `json:"toggled"` // on / off
}

// HeartbeatReq 在线心跳请求
type HeartbeatReq struct {
	SessionID string `json:"session_id" binding:"required"`
}

// TypingPingReq 输入中上报请求
type TypingPingReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
}

// TypingUserDTO 正在输入的成员
type TypingUserDTO struct {
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
}

// OkDTO 尽力而为类操作的状态回执
type OkDTO struct {
	Ok bool `json:"ok"`
}

// NewMessageEvent 新消息频道推送载荷
type NewMessageEvent struct {
	Type           string      `json:"type"` // NEW_MESSAGE
	ConversationID uint64      `json:"conversation_id"`
	Message        *MessageDTO `json:"message"`
}
