package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/clipedit/pkg/ports"
)

// JSONLogger writes one JSON object per message through logrus.
// Component names become a "component" field.
type JSONLogger struct {
	entry *logrus.Entry
}

// NewJSON creates a JSON logger writing to out.
func NewJSON(level ports.LogLevel, out io.Writer) *JSONLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	l.SetLevel(logrusLevel(level))
	return &JSONLogger{entry: logrus.NewEntry(l)}
}

func logrusLevel(level ports.LogLevel) logrus.Level {
	switch level {
	case ports.LevelDebug:
		return logrus.DebugLevel
	case ports.LevelWarn:
		return logrus.WarnLevel
	case ports.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *JSONLogger) Debug(msg string, args ...interface{}) { l.entry.Debug(format(msg, args)) }
func (l *JSONLogger) Info(msg string, args ...interface{})  { l.entry.Info(format(msg, args)) }
func (l *JSONLogger) Warn(msg string, args ...interface{})  { l.entry.Warn(format(msg, args)) }
func (l *JSONLogger) Error(msg string, args ...interface{}) { l.entry.Error(format(msg, args)) }

func (l *JSONLogger) WithComponent(component string) ports.Logger {
	return &JSONLogger{entry: l.entry.WithField("component", component)}
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

var _ ports.Logger = (*JSONLogger)(nil)
