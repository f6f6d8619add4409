package security

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims 身份提供方 Token 携带的标准资料声明
type IdentityClaims struct {
	Name              string `json:"name,omitempty"`
	Nickname          string `json:"nickname,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	Picture           string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}
