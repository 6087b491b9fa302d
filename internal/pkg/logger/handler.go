package logger

import (
	"context"
	log "log/slog"
)

// TeeHandler 将日志分发到多个 Handler
type TeeHandler struct {
	handlers []log.Handler
}

func (s *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	var firstErr error
	for _, h := range s.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TeeHandler{handlers: mapHandlers(s.handlers, func(h log.Handler) log.Handler {
		return h.WithAttrs(attrs)
	})}
}

func (s *TeeHandler) WithGroup(name string) log.Handler {
	return &TeeHandler{handlers: mapHandlers(s.handlers, func(h log.Handler) log.Handler {
		return h.WithGroup(name)
	})}
}

func mapHandlers(handlers []log.Handler, fn func(log.Handler) log.Handler) []log.Handler {
	out := make([]log.Handler, len(handlers))
	for i, h := range handlers {
		out[i] = fn(h)
	}
	return out
}

// RemoteFilterHandler 只把带 trace_id 的请求日志上报到远端
type RemoteFilterHandler struct {
	next log.Handler
}

func (s *RemoteFilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *RemoteFilterHandler) Handle(ctx context.Context, r log.Record) error {
	if TraceID(ctx) == "" {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *RemoteFilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &RemoteFilterHandler{next: s.next.WithAttrs(attrs)}
}

func (s *RemoteFilterHandler) WithGroup(name string) log.Handler {
	return &RemoteFilterHandler{next: s.next.WithGroup(name)}
}
