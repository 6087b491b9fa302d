package logger

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

const slowSQLThreshold = 200 * time.Millisecond

// SlogGormLogger 将 gorm 的 SQL 日志接入 slog，自动携带 trace_id
type SlogGormLogger struct {
	LogLevel logger.LogLevel
}

func NewGormLogger(level logger.LogLevel) *SlogGormLogger {
	return &SlogGormLogger{LogLevel: level}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &SlogGormLogger{LogLevel: level}
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		log.InfoContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		log.WarnContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		log.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	operation, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	if operation == "" {
		operation = "Query"
	}
	msg := "SQL " + strings.ToUpper(operation)

	fields := []any{
		log.String("sql", sql),
		log.Duration("latency", elapsed),
		log.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		log.ErrorContext(ctx, msg+" Error", append(fields, log.Any("err", err))...)
	case elapsed > slowSQLThreshold && l.LogLevel >= logger.Warn:
		log.WarnContext(ctx, msg+" Slow", fields...)
	case l.LogLevel >= logger.Info:
		log.DebugContext(ctx, msg, fields...)
	}
}
