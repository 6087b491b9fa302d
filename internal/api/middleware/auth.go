package middleware

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/security"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	errTokenMissing = errors.New("Token 缺失或格式错误")
	errTokenInvalid = errors.New("Token 无效或已过期")
)

// bearerClaims 解析 Authorization: Bearer <token>，scheme 大小写不敏感
func bearerClaims(c *gin.Context) (*security.UserClaims, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errTokenMissing
	}
	claims, err := security.ValidateToken(token)
	if err != nil || claims.UserID == 0 {
		return nil, errTokenInvalid
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *security.UserClaims) {
	c.Set(consts.UserIDKey, claims.UserID)
	c.Set(consts.RolesKey, claims.Roles)
}

// AuthMiddleware 必须登录，身份写入 Context 供 handler 构造访问者
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c)
		if err != nil {
			response.Fail(c, response.Unauthorized, err.Error())
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}
