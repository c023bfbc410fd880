// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package logging provides the leveled, structured logger used throughout
// Artigraph (graph sealing, the executor, the backend) for the
// informational "skipping existing output" / "building output" messages
// described in spec.md §4.9.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Level is a log severity.
type Level int

const (
	// Error level.
	Error Level = iota
	// Warn level.
	Warn
	// Info level.
	Info
	// Debug level.
	Debug
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	case Debug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]any

// Logger is the interface Artigraph components log through. It is
// satisfied by *StandardLogger and NoOpLogger.
type Logger interface {
	Debug(fields Fields, format string, args ...any)
	Info(fields Fields, format string, args ...any)
	Warn(fields Fields, format string, args ...any)
	Error(fields Fields, format string, args ...any)
	SetLevel(Level)
	GetLevel() Level
	WithFields(Fields) Logger
}

// StandardLogger is the default Logger implementation, backed by logrus
// (the teacher's logging dependency).
type StandardLogger struct {
	entry *logrus.Entry
}

// New returns a new StandardLogger writing structured (JSON) output at
// Info level, mirroring the teacher's default logger construction.
func New() *StandardLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &StandardLogger{entry: logrus.NewEntry(l)}
}

func (s *StandardLogger) log(level logrus.Level, fields Fields, format string, args ...any) {
	entry := s.entry
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	entry.Logf(level, format, args...)
}

// Debug logs at Debug level.
func (s *StandardLogger) Debug(fields Fields, format string, args ...any) {
	s.log(logrus.DebugLevel, fields, format, args...)
}

// Info logs at Info level.
func (s *StandardLogger) Info(fields Fields, format string, args ...any) {
	s.log(logrus.InfoLevel, fields, format, args...)
}

// Warn logs at Warn level.
func (s *StandardLogger) Warn(fields Fields, format string, args ...any) {
	s.log(logrus.WarnLevel, fields, format, args...)
}

// Error logs at Error level.
func (s *StandardLogger) Error(fields Fields, format string, args ...any) {
	s.log(logrus.ErrorLevel, fields, format, args...)
}

// SetLevel changes the minimum level logged.
func (s *StandardLogger) SetLevel(level Level) {
	s.entry.Logger.SetLevel(level.logrusLevel())
}

// GetLevel returns the current minimum level.
func (s *StandardLogger) GetLevel() Level {
	switch s.entry.Logger.GetLevel() {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return Error
	case logrus.WarnLevel:
		return Warn
	case logrus.DebugLevel, logrus.TraceLevel:
		return Debug
	default:
		return Info
	}
}

// WithFields returns a copy of the logger with fields attached to every
// subsequent call.
func (s *StandardLogger) WithFields(fields Fields) Logger {
	return &StandardLogger{entry: s.entry.WithFields(logrus.Fields(fields))}
}

// NoOpLogger discards every message. Used by tests and by callers that
// don't want Artigraph's informational logging.
type NoOpLogger struct{}

// NewNoOpLogger returns a Logger that discards everything.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (NoOpLogger) Debug(Fields, string, ...any) {}
func (NoOpLogger) Info(Fields, string, ...any)  {}
func (NoOpLogger) Warn(Fields, string, ...any)  {}
func (NoOpLogger) Error(Fields, string, ...any) {}
func (NoOpLogger) SetLevel(Level)               {}
func (NoOpLogger) GetLevel() Level              { return Info }
func (n NoOpLogger) WithFields(Fields) Logger    { return n }
