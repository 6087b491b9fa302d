package security

import (
	"Agora/internal/pkg/consts"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims Token 中携带的身份信息
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// IsAdmin 是否拥有管理员角色
func (c *UserClaims) IsAdmin() bool {
	return slices.Contains(c.Roles, consts.RoleAdmin)
}
