package logging

import (
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so call sites can stay on the package helpers.
type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Duration(key string, value time.Duration) Attr {
	return slog.Duration(key, value)
}

// Error records an error under the conventional "error" key. A nil error
// becomes an empty string so callers do not have to branch.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Args flattens attrs into the ...any form expected by slog convenience
// methods.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewComponentLogger returns a child logger tagged with the component name.
// A nil base produces a no-op logger so components never have to nil-check.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		return NewNop()
	}
	return base.With(String("component", component))
}
