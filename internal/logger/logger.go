// Package logger provides structured logging built on log/slog with
// rotated file output and credential sanitization.
package logger

import (
	"fmt"
	"sync"
)

var (
	defaultLogger Logger
	mu            sync.RWMutex
	initialized   bool
)

// Init initializes the global logger.
func Init(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return fmt.Errorf("logger already initialized; call Shutdown() before re-initializing")
	}

	logger, err := NewSlogLogger(config)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defaultLogger = logger
	initialized = true
	return nil
}

// Get returns the global logger. Before Init it returns a no-op
// logger so callers never need a nil check.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()

	if !initialized {
		return &NullLogger{}
	}
	return defaultLogger
}

// With returns a child of the global logger with extra context.
func With(args ...any) Logger {
	return Get().With(args...)
}

// Shutdown flushes and closes the global logger.
func Shutdown() error {
	mu.Lock()
	if !initialized {
		mu.Unlock()
		return nil
	}

	logger := defaultLogger
	initialized = false
	// release before Shutdown so logging during close cannot deadlock
	mu.Unlock()

	return logger.Shutdown()
}

// NullLogger discards everything.
type NullLogger struct{}

func (n *NullLogger) Debug(msg string, args ...any) {}
func (n *NullLogger) Info(msg string, args ...any)  {}
func (n *NullLogger) Warn(msg string, args ...any)  {}
func (n *NullLogger) Error(msg string, args ...any) {}
func (n *NullLogger) With(args ...any) Logger       { return n }
func (n *NullLogger) Shutdown() error               { return nil }
