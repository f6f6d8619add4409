package dto

import "time"

// UserDTO 用户公开资料
type UserDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	AvatarColor string    `json:"avatarColor,omitempty"` // 无头像时的确定性占位底色
	CreatedAt   time.Time `json:"createdAt"`
}

// DiscoveryReq 用户检索请求
type DiscoveryReq struct {
	Query string `form:"query"`
	Limit int    `form:"limit"`
}
