package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupGin 注册 JSON 格式的访问日志和 Recovery
func SetupGin(r *gin.Engine, index string) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output: LogWriter,
		Formatter: func(p gin.LogFormatterParams) string {
			traceID := ""
			if p.Keys != nil {
				if id, ok := p.Keys[TraceIDKey].(string); ok {
					traceID = id
				}
			}
			if traceID == "" && p.Request != nil {
				traceID = TraceID(p.Request.Context())
			}

			return fmt.Sprintf(
				`{"time":"%s","level":"INFO","msg":"GIN_ACCESS","trace_id":"%s","target_index":"%s","method":"%s","path":"%s","status":%d,"latency":"%v","client_ip":"%s"}`+"\n",
				p.TimeStamp.Format(time.RFC3339),
				traceID,
				index,
				p.Method,
				p.Path,
				p.StatusCode,
				p.Latency,
				p.ClientIP,
			)
		},
	}))

	r.Use(gin.Recovery())
}
