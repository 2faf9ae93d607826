package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New builds a logger writing text or json to w. Any format other than
// "json" falls back to text.
func New(w io.Writer, level, format, app string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	if app = strings.TrimSpace(app); app != "" {
		l = l.With("app", app)
	}
	return l
}

// Setup installs a stdout logger as the slog default and returns it.
func Setup(level, format, app string) *slog.Logger {
	l := New(os.Stdout, level, format, app)
	slog.SetDefault(l)
	return l
}

// Discard is for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
