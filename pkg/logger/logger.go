package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Setup configures the default logger for the given level and destination.
// logFile is "stdout", "stderr" or a path on fs opened in append mode. The
// returned function closes the destination when it is a file.
func Setup(fs afero.Fs, logLevel string, logFile string, stdout, stderr io.Writer) (*slog.Logger, func() error, error) {
	w, closeFn, err := Open(fs, logFile, stdout, stderr)
	if err != nil {
		return nil, nil, err
	}
	logger := New(w, logLevel)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// Open resolves a log destination. stdout and stderr are used for the
// "stdout" and "stderr" names.
func Open(fs afero.Fs, logFile string, stdout, stderr io.Writer) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(logFile)) {
	case "", "stderr":
		return stderr, noop, nil
	case "stdout":
		return stdout, noop, nil
	}

	file, err := fs.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 -- path provided via flag.
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return file, file.Close, nil
}

// New creates a text logger writing to w at the given level.
func New(w io.Writer, logLevel string) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: getLogLevel(logLevel)}
	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

func getLogLevel(logLevel string) slog.Level {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return level
}
