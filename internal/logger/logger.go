package logger

import (
	"io"
	"log/slog"
)

// New builds the process logger: colored lines for development, JSON otherwise.
func New(w io.Writer, development bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if development {
		return slog.New(NewPrettyHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
