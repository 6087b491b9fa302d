package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders  = "Origin, Content-Type, Accept, Authorization, X-Trace-ID"
	corsExposeHeaders = "Content-Length, Content-Type, X-Trace-ID"
	corsMaxAge        = "600"
)

// CORSMiddleware 按白名单回显 Origin。allowedOrigins 为空或包含 "*" 时接受任意来源
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Vary", "Origin")
			_, ok := allowed[strings.ToLower(origin)]
			if allowAll || ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
				if c.Request.Method == http.MethodOptions {
					c.Header("Access-Control-Allow-Methods", corsAllowMethods)
					c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
					c.Header("Access-Control-Max-Age", corsMaxAge)
				}
			}
		}

		// 预检请求不进入路由，未放行的来源拿不到 Allow-Origin，由浏览器拦截
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
