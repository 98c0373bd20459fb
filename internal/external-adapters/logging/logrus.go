// Package logging adapts logrus to the domain Logger port.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// LogrusLogger implements interfaces.Logger
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger creates a text logger writing to out at the given level
// ("debug", "info", "warn", "error")
func NewLogrusLogger(level string, out io.Writer) (*LogrusLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.Out = out
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	return &LogrusLogger{logger: logger}, nil
}

// Debug logs debug-level messages
func (l *LogrusLogger) Debug(msg string, fields ...interfaces.Field) {
	l.entry(fields).Debug(msg)
}

// Info logs informational messages
func (l *LogrusLogger) Info(msg string, fields ...interfaces.Field) {
	l.entry(fields).Info(msg)
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(msg string, fields ...interfaces.Field) {
	l.entry(fields).Warn(msg)
}

// Error logs error messages
func (l *LogrusLogger) Error(msg string, fields ...interfaces.Field) {
	l.entry(fields).Error(msg)
}

func (l *LogrusLogger) entry(fields []interfaces.Field) *logrus.Entry {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			data[logrus.ErrorKey] = err
			continue
		}
		data[f.Key] = f.Value
	}
	return l.logger.WithFields(data)
}
