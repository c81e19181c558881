// Package logger provides opinionated logging capabilities for askbox
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to stdout.
func NewLogger(debug bool) *zap.Logger {
	return NewLoggerTo(os.Stdout, debug)
}

// NewLoggerTo returns a console logger writing to w. Commands that own stdout
// (the MCP stdio transport, the terminal UI) log to stderr or a file instead.
func NewLoggerTo(w io.Writer, debug bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core, zap.AddCaller()).Named("askbox")
}

// Truncate shortens s for log previews, flattening newlines. A negative
// maxLen is treated as zero.
func Truncate(s string, maxLen int) string {
	maxLen = max(maxLen, 0)
	flat := []rune(s)
	for i, r := range flat {
		if r == '\n' || r == '\r' {
			flat[i] = ' '
		}
	}
	if len(flat) <= maxLen {
		return string(flat)
	}
	return string(flat[:maxLen]) + "..."
}
