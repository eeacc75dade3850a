// Package logging configures log/slog for neodbg. The console owns the
// terminal, so logs go to a file unless told otherwise.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Level allows changing the log level at runtime.
var Level slog.LevelVar

// DefaultFile is the log file used when none is configured.
func DefaultFile() string {
	return filepath.Join(os.TempDir(), "neodbg.log")
}

// Setup opens file (DefaultFile when empty) and installs the default
// logger. The returned closer closes the file.
func Setup(levelStr, formatStr, file string) (io.Closer, error) {
	if file == "" {
		file = DefaultFile()
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	SetupWithConfig(levelStr, formatStr, f)
	return f, nil
}

// SetupWithConfig configures slog writing to w. The stdlib log package,
// used by the RPC client libraries, is bridged into it.
func SetupWithConfig(levelStr, formatStr string, w io.Writer) {
	Level.Set(ParseLevel(levelStr))

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: &Level}

	switch strings.ToLower(strings.TrimSpace(formatStr)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	log.SetOutput(newSlogWriter(logger))
	log.SetFlags(0)
}

// ParseLevel converts a string to slog.Level. Defaults to INFO.
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

type slogWriter struct {
	logger *slog.Logger
}

func newSlogWriter(logger *slog.Logger) *slogWriter {
	return &slogWriter{logger: logger}
}

func (w *slogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimRight(string(p), "\n")
	w.logger.Info(msg, "source", "stdlib")
	return len(p), nil
}
