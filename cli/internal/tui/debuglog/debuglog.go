// ABOUTME: Structured debug logger that writes to a log file in the data directory
// ABOUTME: Keeps log output off the terminal so it cannot corrupt TUI or command output

package debuglog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file created inside the data directory
const FileName = "debug.log"

// Open returns a logger appending to dir/debug.log and a function that
// closes the file. If dir is empty, logging is disabled.
func Open(dir string, level slog.Level) (*slog.Logger, func() error, error) {
	if dir == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}

	return New(f, level), f.Close, nil
}

// New returns a text logger writing to w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel converts debug, info, warn or error to a slog level. Anything
// else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
