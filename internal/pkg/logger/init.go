package logger

import (
	"Agora/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"strings"
)

var LogWriter io.Writer = os.Stdout

// InitLogger 初始化全局 slog，配置了 Logstash 地址时同时输出到远端
func InitLogger(cfg config.LoggerConfig) {
	opts := &log.HandlerOptions{Level: parseLevel(cfg.Level)}
	hStdout := log.NewJSONHandler(os.Stdout, opts)

	var finalHandler log.Handler = hStdout

	if cfg.Logstash != "" {
		conn, err := net.Dial("tcp", cfg.Logstash)
		if err == nil {
			hRemote := log.NewJSONHandler(conn, opts).
				WithAttrs([]log.Attr{
					log.String("target_index", cfg.Index),
					log.String("log_token", cfg.Token),
				})

			finalHandler = &TeeHandler{
				handlers: []log.Handler{hStdout, &RemoteFilterHandler{next: hRemote}},
			}
			LogWriter = io.MultiWriter(os.Stdout, conn)
		} else {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
		}
	}

	log.SetDefault(log.New(&ContextHandler{finalHandler}))
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
