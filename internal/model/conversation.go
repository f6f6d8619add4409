package model

import "time"

// Conversation 会话主表
type Conversation struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      int8    `gorm:"not null;default:1" json:"type"`                // 1-单聊, 2-群聊
	DirectKey *string `gorm:"uniqueIndex;type:varchar(64)" json:"directKey"` // uid1:uid2，仅单聊
	Name      *string `gorm:"type:varchar(100)" json:"name"`                 // 仅群聊
	CreatedBy uint64  `gorm:"not null" json:"createdBy"`

	// 最后一条消息的冗余摘要，消息写路径负责维护
	LastMessageAt      *time.Time `gorm:"index;type:datetime(3)" json:"lastMessageAt"`
	LastMessageSnippet string     `gorm:"type:varchar(255)" json:"lastMessageSnippet"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// ConversationMember 会话成员表，(conversation_id, user_id) 唯一
type ConversationMember struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64     `gorm:"uniqueIndex:idx_conv_user" json:"conversationId"`
	UserID         uint64     `gorm:"uniqueIndex:idx_conv_user;index" json:"userId"`
	Role           string     `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	UnreadCount    uint64     `gorm:"not null;default:0" json:"unreadCount"`
	LastReadAt     *time.Time `gorm:"type:datetime(3)" json:"lastReadAt"`
	JoinedAt       time.Time  `json:"joinedAt"`

	Conversation Conversation `gorm:"foreignKey:ConversationID;references:ID" json:"conversation"`
}

func (ConversationMember) TableName() string { return "conversation_members" }
