// Package logging builds the application logger: text records to the
// console and to a size-rotated file in the config directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the active log file inside Options.Dir.
const FileName = "steamwatch.log"

// Options configures New.
type Options struct {
	// Dir holds the rotated log files. Empty disables the file sink.
	Dir   string
	Debug bool
	// Console defaults to os.Stderr.
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger is an slog.Logger bound to a closable file sink.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// New creates the logger. Close must be called to release the file.
func New(options Options) (*Logger, error) {
	if options.Console == nil {
		options.Console = os.Stderr
	}
	if options.MaxSizeMB <= 0 {
		options.MaxSizeMB = 5
	}
	if options.MaxBackups <= 0 {
		options.MaxBackups = 3
	}
	if options.MaxAgeDays <= 0 {
		options.MaxAgeDays = 28
	}

	level := slog.LevelInfo
	if options.Debug {
		level = slog.LevelDebug
	}

	logger := &Logger{}
	writer := options.Console
	if options.Dir != "" {
		if err := os.MkdirAll(options.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		logger.file = &lumberjack.Logger{
			Filename:   filepath.Join(options.Dir, FileName),
			MaxSize:    options.MaxSizeMB,
			MaxBackups: options.MaxBackups,
			MaxAge:     options.MaxAgeDays,
		}
		writer = io.MultiWriter(options.Console, logger.file)
	}

	logger.Logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
	return logger, nil
}

// Close flushes and closes the file sink.
func (logger *Logger) Close() error {
	if logger == nil || logger.file == nil {
		return nil
	}
	return logger.file.Close()
}
