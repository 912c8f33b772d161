package logx

import (
	"io"
	"log/slog"
	"strings"
)

// Options configures the process logger.
type Options struct {
	Service string
	Env     string // "development" adds source locations
	Level   string // debug | info | warn | error
	Format  string // json | text
}

// New builds a slog.Logger writing to w and installs it as the slog default.
func New(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{
		AddSource: opts.Env == "development",
		Level:     parseLevel(opts.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text":
		handler = slog.NewTextHandler(w, hopts)
	default:
		handler = slog.NewJSONHandler(w, hopts)
	}

	logger := slog.New(handler).With("service", opts.Service, "env", opts.Env)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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

// MaskEmail keeps the first character of the local part: "alice@x.com" -> "a****@x.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "****"
	}
	return email[:1] + strings.Repeat("*", 4) + email[at:]
}
