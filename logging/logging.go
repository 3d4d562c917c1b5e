// Package logging provides the structured logger used throughout the
// collection. It mirrors the split used by the teacher codebase between a
// small, stable Logger interface and a logrus-backed implementation, so
// callers can swap in their own logger without pulling in logrus.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used by the collection package. Each call
// carries its own Fields; nothing is retained between calls.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
}

// Fields carries structured key/value pairs for a single log line.
type Fields map[string]any

// logrusLogger adapts *logrus.Logger to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// New returns a Logger backed by a fresh logrus.Logger at Info level, using
// logrus's default text formatter.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// NewFromLogrus wraps an existing *logrus.Logger, letting callers share
// their process-wide logger configuration (formatter, level, hooks) with
// the collection.
func NewFromLogrus(l *logrus.Logger) Logger {
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Error(msg)
}

// noOpLogger discards everything. It is the default logger for new
// collections so embedding this library never produces unsolicited output.
type noOpLogger struct{}

// NoOp returns a Logger that discards all log lines.
func NoOp() Logger { return noOpLogger{} }

func (noOpLogger) Debug(string, Fields) {}
func (noOpLogger) Info(string, Fields)  {}
func (noOpLogger) Warn(string, Fields)  {}
func (noOpLogger) Error(string, Fields) {}
