package security

import (
	"Ripple/internal/api/config"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Validator 验证身份提供方签发的 Bearer Token (RS256 + JWKS)
type Validator struct {
	issuer   string
	audience string
	keys     *KeySet
}

func NewValidator(cfg config.AuthConfig) *Validator {
	return &Validator{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		keys:     NewKeySet(cfg.JWKSURL),
	}
}

// ValidateToken 验证 Token 字符串并解析出 Claims
func (s *Validator) ValidateToken(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return s.keys.Get(kid)
	}, opts...)

	if err != nil {
		return nil, fmt.Errorf("token 解析失败: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token 无效或已过期")
	}

	return claims, nil
}
