// ABOUTME: Structured logger backed by logrus implementing interfaces.Logger
// ABOUTME: Writes text-formatted entries with full timestamps and a configurable level

package standard

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level or an unknown level is configured
const DefaultLevel = "info"

// StandardLogger implements the Logger interface on top of logrus
type StandardLogger struct {
	log *logrus.Logger
}

// NewStandardLogger creates a logger writing to stderr at the default level
func NewStandardLogger() *StandardLogger {
	return New(os.Stderr, DefaultLevel)
}

// New creates a logger writing to out at level. Unknown levels fall back to info.
func New(out io.Writer, level string) *StandardLogger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(ParseLevel(level))
	return &StandardLogger{log: log}
}

// ParseLevel maps a configured level name to a logrus level
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// SetLevel changes the minimum level at runtime, for example from a --verbose flag
func (l *StandardLogger) SetLevel(level string) {
	l.log.SetLevel(ParseLevel(level))
}

// Level returns the current minimum level name
func (l *StandardLogger) Level() string {
	return l.log.GetLevel().String()
}

// Debug logs a debug message
func (l *StandardLogger) Debug(msg string, fields map[string]interface{}) {
	l.entry(fields).Debug(msg)
}

// Info logs an info message
func (l *StandardLogger) Info(msg string, fields map[string]interface{}) {
	l.entry(fields).Info(msg)
}

// Warn logs a warning message
func (l *StandardLogger) Warn(msg string, fields map[string]interface{}) {
	l.entry(fields).Warn(msg)
}

// Error logs an error message
func (l *StandardLogger) Error(msg string, fields map[string]interface{}) {
	l.entry(fields).Error(msg)
}

func (l *StandardLogger) entry(fields map[string]interface{}) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(l.log)
	}
	return l.log.WithFields(logrus.Fields(fields))
}
