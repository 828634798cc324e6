package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SlogLogger implements Logger on top of log/slog.
type SlogLogger struct {
	logger    *slog.Logger
	sanitizer *Sanitizer
	writers   []io.WriteCloser
}

// NewSlogLogger builds a logger from config.
func NewSlogLogger(config Config) (*SlogLogger, error) {
	var writers []io.Writer
	var closeable []io.WriteCloser

	if !config.Quiet {
		if config.Writer != nil {
			writers = append(writers, config.Writer)
		} else {
			writers = append(writers, os.Stderr)
		}
	}

	if config.File.Enabled {
		fileWriter, err := newFileWriter(config.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create file writer: %w", err)
		}
		writers = append(writers, fileWriter)
		closeable = append(closeable, fileWriter)
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	out := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: convertLevel(config.Level)}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return &SlogLogger{
		logger:    slog.New(handler),
		sanitizer: NewSanitizer(),
		writers:   closeable,
	}, nil
}

// newFileWriter builds a rotating file writer.
func newFileWriter(config FileConfig) (io.WriteCloser, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxAge:     config.MaxAgeDays,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
	}, nil
}

func convertLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

// With returns a child logger. Children do not own writers, so only
// the root logger closes them.
func (l *SlogLogger) With(args ...any) Logger {
	return &childLogger{
		logger:    l.logger.With(l.sanitizer.SanitizeArgs(args)...),
		sanitizer: l.sanitizer,
	}
}

// Shutdown closes all owned writers.
func (l *SlogLogger) Shutdown() error {
	var lastErr error
	for _, w := range l.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

type childLogger struct {
	logger    *slog.Logger
	sanitizer *Sanitizer
}

func (c *childLogger) Debug(msg string, args ...any) {
	c.logger.Debug(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) Info(msg string, args ...any) {
	c.logger.Info(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) Warn(msg string, args ...any) {
	c.logger.Warn(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) Error(msg string, args ...any) {
	c.logger.Error(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) With(args ...any) Logger {
	return &childLogger{
		logger:    c.logger.With(c.sanitizer.SanitizeArgs(args)...),
		sanitizer: c.sanitizer,
	}
}

func (c *childLogger) Shutdown() error {
	return nil
}
