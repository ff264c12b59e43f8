// Package log defines the logging interface used across the One ROM
// composer, parser, and validator, and a default implementation backed
// by log/slog.
package log

import (
	"log/slog"
	"os"
)

// Logger is an optional logging interface that can be injected into any
// composer, loader, or validator component. This allows integration with
// any logging framework without forcing a dependency on one.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// Nop is a Logger that discards everything. It is the default when no
// Logger is configured.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}

// Slog adapts the standard library's structured logger to Logger.
type Slog struct {
	l *slog.Logger
}

// NewSlog returns a Logger backed by log/slog writing to stderr.
//
// Example:
//
//	data, err := image.Compose(fwImage, builtSets, image.WithLogger(log.NewSlog()))
func NewSlog() *Slog {
	return &Slog{l: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

func (s *Slog) Debug(msg string, kv ...interface{}) { s.l.Debug(msg, kv...) }
func (s *Slog) Info(msg string, kv ...interface{})  { s.l.Info(msg, kv...) }
func (s *Slog) Error(msg string, kv ...interface{}) { s.l.Error(msg, kv...) }
