package handler

import (
	"Ripple/internal/api/middleware"
	"Ripple/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// claimsFrom 取出中间件注入的身份声明，未登录时为 nil
func claimsFrom(c *gin.Context) *security.IdentityClaims {
	v, exists := c.Get(middleware.ClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := v.(*security.IdentityClaims)
	return claims
}
