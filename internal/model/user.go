package model

import "time"

// User 应用用户，首次通过身份提供方认证时落库，之后每次写操作回刷资料
type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	SubjectID string    `gorm:"type:varchar(128);uniqueIndex:idx_subject" json:"-"` // 身份提供方 subject
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	Email     *string   `gorm:"type:varchar(255)" json:"email,omitempty"`
	AvatarURL *string   `gorm:"type:varchar(512)" json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
