// Package logger is the process-wide slog wrapper used by every tripbot package.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes logger settings.
type Config struct {
	Enabled bool
	Level   string
	Stdout  bool
	File    string
}

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg       Config
	file      *os.File
	intercept io.Writer // set while the TUI owns the terminal
)

// Init configures the logger. A relative File is resolved against baseDir.
func Init(c Config, baseDir string) error {
	mu.Lock()
	defer mu.Unlock()

	cfg = c
	closeFileLocked()

	if !c.Enabled {
		base = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	var initErr error
	if c.File != "" {
		path := expandPath(c.File, baseDir)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			initErr = fmt.Errorf("logger: create log dir: %w", err)
		} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
			initErr = fmt.Errorf("logger: open log file: %w", err)
		} else {
			file = f
		}
	}

	rebuildLocked()
	return initErr
}

// Intercept sends console output to w instead of stdout. The log file, if
// any, keeps receiving lines.
func Intercept(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	intercept = w
	rebuildLocked()
}

// Restore undoes Intercept.
func Restore() {
	mu.Lock()
	defer mu.Unlock()
	intercept = nil
	rebuildLocked()
}

// Close releases the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
	rebuildLocked()
}

func rebuildLocked() {
	if !cfg.Enabled {
		return
	}

	var writers []io.Writer
	switch {
	case intercept != nil:
		writers = append(writers, intercept)
	case cfg.Stdout:
		writers = append(writers, os.Stdout)
	}
	if file != nil {
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	base = slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
}

func closeFileLocked() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

func Warn(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

func log(level slog.Level, msg string, args ...any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Log(context.Background(), level, msg, args...)
}

func parseLevel(level string) slog.Level {
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

func expandPath(path, baseDir string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
