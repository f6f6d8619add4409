package mongo

import "time"

// Message MongoDB 消息明细模型
type Message struct {
	ID             string     `bson:"_id,omitempty" json:"id"`               // MongoDB 自动生成的 ObjectID
	ConversationID uint64     `bson:"conversation_id" json:"conversationId"` // 关联 MySQL 的会话 ID
	SenderID       uint64     `bson:"sender_id" json:"senderId"`             // 发送者 UID
	MsgType        int        `bson:"msg_type" json:"msgType"`               // 1-文本, 2-文件, 3-语音
	Body           string     `bson:"body" json:"body"`                      // 文本内容，非文本类型为空
	File           *FileMeta  `bson:"file,omitempty" json:"file,omitempty"`
	Voice          *VoiceMeta `bson:"voice,omitempty" json:"voice,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
	DeletedAt      *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"` // 软删除墓碑标记
}

// FileMeta 文件附件元数据，字节内容存于对象存储
type FileMeta struct {
	StorageKey string `bson:"storage_key" json:"storageKey"`
	FileName   string `bson:"file_name" json:"fileName"`
	FileSize   int64  `bson:"file_size" json:"fileSize"`
	MimeType   string `bson:"mime_type" json:"mimeType"`
}

// VoiceMeta 语音附件元数据
type VoiceMeta struct {
	StorageKey string `bson:"storage_key" json:"storageKey"`
	DurationMs int64  `bson:"duration_ms" json:"durationMs"`
	MimeType   string `bson:"mime_type" json:"mimeType"`
}

// Reaction 表情回应，(message_id, user_id, emoji) 三元组唯一
type Reaction struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	MessageID string    `bson:"message_id" json:"messageId"`
	UserID    uint64    `bson:"user_id" json:"userId"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
