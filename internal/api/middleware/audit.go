package middleware

import (
	"Agora/internal/pkg/consts"
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// auditBodyLimit 请求体与响应体各自最多记录的字节数
const auditBodyLimit = 16 << 10

// cappedBuffer 只保留前 limit 字节，超出部分丢弃并记为截断
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) {
	if room := b.limit - b.buf.Len(); room < len(p) {
		b.truncated = true
		p = p[:max(room, 0)]
	}
	b.buf.Write(p)
}

type auditResponseWriter struct {
	gin.ResponseWriter
	body *cappedBuffer
}

func (w *auditResponseWriter) Write(p []byte) (int, error) {
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *auditResponseWriter) WriteString(s string) (int, error) {
	w.body.Write([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *auditResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// AuditMiddleware 记录请求与响应。skipPaths 中的路径（如健康检查）不记录
func AuditMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		reqBody := &cappedBuffer{limit: auditBodyLimit}
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			reqBody.Write(raw)
		}

		query, err := url.QueryUnescape(c.Request.URL.RawQuery)
		if err != nil {
			query = c.Request.URL.RawQuery
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", query),
			log.String("client_ip", c.ClientIP()),
			log.String("req_body", reqBody.buf.String()),
			log.Bool("req_truncated", reqBody.truncated),
		)

		w := &auditResponseWriter{ResponseWriter: c.Writer, body: &cappedBuffer{limit: auditBodyLimit}}
		c.Writer = w
		start := time.Now()

		c.Next()

		attrs := []any{
			log.String("route", c.FullPath()),
			log.Uint64("user_id", c.GetUint64(consts.UserIDKey)),
			log.Any("roles", c.GetStringSlice(consts.RolesKey)),
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(start)),
			log.String("res_body", w.body.buf.String()),
			log.Bool("res_truncated", w.body.truncated),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, log.String("errors", c.Errors.String()))
		}
		log.InfoContext(ctx, "Send Response", attrs...)
	}
}
