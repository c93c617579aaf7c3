package logging

import (
	"context"
	"log/slog"
	"strings"

	"bdnav/internal/config"
)

// floorHandler drops records below floor before they reach inner. inner
// keeps its own level, so a floor can only make a logger quieter.
type floorHandler struct {
	inner slog.Handler
	floor slog.Level
}

func (h floorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.floor && h.inner.Enabled(ctx, level)
}

func (h floorHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.floor {
		return nil
	}
	return h.inner.Handle(ctx, record)
}

func (h floorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return floorHandler{inner: h.inner.WithAttrs(attrs), floor: h.floor}
}

func (h floorHandler) WithGroup(name string) slog.Handler {
	return floorHandler{inner: h.inner.WithGroup(name), floor: h.floor}
}

// WithLevelOverride returns a logger that drops records below level while
// keeping logger's attributes and output. Applying it twice replaces the
// earlier floor instead of stacking.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	inner := logger.Handler()
	if fh, ok := inner.(floorHandler); ok {
		inner = fh.inner
	}
	return slog.New(floorHandler{inner: inner, floor: level})
}

// ForDecoders applies the configured decoder_level, when set, on top of
// logger. Decoder components log through the returned logger.
func ForDecoders(logger *slog.Logger, cfg *config.Config) *slog.Logger {
	if cfg == nil || strings.TrimSpace(cfg.Logging.DecoderLevel) == "" {
		return logger
	}
	return WithLevelOverride(logger, parseLevel(cfg.Logging.DecoderLevel))
}
