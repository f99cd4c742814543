package logging

import (
	"context"
	"log/slog"
)

// floorHandler drops records below min. It can only make a logger quieter;
// the wrapped handler's own level still applies.
type floorHandler struct {
	slog.Handler
	min slog.Level
}

func (h floorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.Handler.Enabled(ctx, level)
}

func (h floorHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.min {
		return nil
	}
	return h.Handler.Handle(ctx, record)
}

func (h floorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return floorHandler{Handler: h.Handler.WithAttrs(attrs), min: h.min}
}

func (h floorHandler) WithGroup(name string) slog.Handler {
	return floorHandler{Handler: h.Handler.WithGroup(name), min: h.min}
}

// WithLevelOverride returns a logger that drops records below level. An
// override already on logger is replaced rather than stacked.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	h := logger.Handler()
	if f, ok := h.(floorHandler); ok {
		h = f.Handler
	}
	return slog.New(floorHandler{Handler: h, min: level})
}
