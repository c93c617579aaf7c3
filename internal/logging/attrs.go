package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Hex renders an integer as a 0x-prefixed, zero-padded hexadecimal string.
// Coding types, PIDs and tags read better that way than in decimal.
func Hex(key string, value uint64) Attr {
	return slog.String(key, "0x"+formatHex(value))
}

// Path tags a line with the navigation file being decoded. The console
// handler shows its base name in the line header.
func Path(path string) Attr { return slog.String(FieldPath, path) }

// Offset records a byte offset within the file being decoded.
func Offset(offset int64) Attr { return slog.Int64(FieldOffset, offset) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a no-op logger carrying the tag.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func hasAttr(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a soft decoding anomaly. event_type, error_hint and
// impact are always present; callers override the defaults by passing their
// own attribute under the same key.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !hasAttr(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasAttr(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "rerun with --log-level debug to trace the surrounding structure"))
	}
	if !hasAttr(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "decoding continued"))
	}
	logger.Warn(msg, Args(attrs...)...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }

func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h discardHandler) WithGroup(string) slog.Handler { return h }
