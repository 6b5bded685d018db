package config

import (
	"io"
	"log/slog"
)

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewHandlerForTest exposes the handler construction for testing purposes
func NewHandlerForTest(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	return newHandler(w, format, level)
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channel string) *Slack {
	return &Slack{botToken: botToken, channel: channel}
}
