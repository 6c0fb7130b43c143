// Package logging configures the process-wide slog logger. The TUI owns the
// terminal, so logs never go to stdout: they land in a rotating file when
// TREEFOLD_LOG names one, and are discarded otherwise.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLogFile  = "TREEFOLD_LOG"
	envLogLevel = "TREEFOLD_LOG_LEVEL"

	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

// ParseLevel maps a level name (or numeric slog level) to a slog.Level.
func ParseLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// Configure installs the default logger and returns it. logPath overrides
// TREEFOLD_LOG; when both are empty the logger discards everything. verbose
// forces Debug; otherwise TREEFOLD_LOG_LEVEL decides (default Info).
func Configure(logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = strings.TrimSpace(os.Getenv(envLogFile))
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = ParseLevel(os.Getenv(envLogLevel), slog.LevelInfo)
	}

	var w io.Writer
	if logPath == "" {
		w = io.Discard
	} else {
		w = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
			Compress:   true,
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
