package middleware

import (
	"Ripple/internal/pkg/logger"
	"Ripple/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入声明，失败或缺失则不注入
func AuthOptionalMiddleware(validator *security.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := validator.ValidateToken(token)

		if err == nil {
			c.Set(ClaimsKey, claims)
			newCtx := context.WithValue(c.Request.Context(), logger.SubjectKey, claims.Subject)
			c.Request = c.Request.WithContext(newCtx)
		}

		c.Next()
	}
}
