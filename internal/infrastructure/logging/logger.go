package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
)

// ServiceName is attached to every entry as the "service" field.
const ServiceName = "graylogic-interaction"

// Logger is the service's structured logger. It satisfies the narrow
// Logger interfaces the domain packages declare, so one instance (or a
// Component child of it) is handed to every part of the service.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging section, writing to stdout unless
// output is "stderr".
func New(cfg config.LoggingConfig, version string) *Logger {
	return NewWithWriter(cfg, version, destination(cfg.Output))
}

// NewWithWriter is New with an explicit destination. doorctl uses it to
// keep logs off stdout; tests use it to capture entries.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	}
	h = h.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(h)}
}

func destination(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return slog.LevelInfo
}

// With returns a child logger carrying args on every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child logger tagged component=name.
//
//	ctrlLog := log.Component("animation")
//	ctrlLog.Info("session completed", "door", path)
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Door returns a child logger tagged with a door path.
func (l *Logger) Door(path string) *Logger {
	return l.With("door", path)
}

// Default is the JSON, info-level stdout logger used until the
// configuration has been loaded.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
