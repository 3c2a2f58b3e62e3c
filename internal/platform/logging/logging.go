// Package logging builds the process slog.Logger and holds the canonical
// attribute keys used by the state managers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	KeyComponent  = "component"
	KeyCommand    = "command"
	KeySessionID  = "session_id"
	KeyQuality    = "quality"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func Command(name string) slog.Attr   { return slog.String(KeyCommand, name) }
func SessionID(id int64) slog.Attr    { return slog.Int64(KeySessionID, id) }
func Quality(q int) slog.Attr         { return slog.Int(KeyQuality, q) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
