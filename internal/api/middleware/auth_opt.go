package middleware

import (
	"Agora/internal/pkg/consts"
	"errors"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 读接口使用。令牌缺失或无效时按匿名访问处理，不拒绝请求
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c)
		switch {
		case err == nil:
			setIdentity(c, claims)
		case errors.Is(err, errTokenInvalid):
			log.DebugContext(c.Request.Context(), "ignore invalid token on optional auth route", "path", c.FullPath())
			fallthrough
		default:
			c.Set(consts.UserIDKey, uint64(0))
		}
		c.Next()
	}
}
