// Package logger provides ports.Logger implementations for the console,
// for JSON log collectors, and a silent one.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/clipedit/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ConsoleLogger logs messages to the console with color support.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	out, err  io.Writer
}

// NewConsole creates a console logger. Output is colored when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		color: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		out:   os.Stdout,
		err:   os.Stderr,
	}
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.level > ports.LevelDebug {
		return
	}
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	if l.level > ports.LevelInfo {
		return
	}
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	if l.level > ports.LevelWarn {
		return
	}
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	if l.level > ports.LevelError {
		return
	}
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a new logger with the specified component name.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	return &ConsoleLogger{
		level:     l.level,
		component: component,
		color:     l.color,
		out:       l.out,
		err:       l.err,
	}
}

// log writes one line; warnings and errors go to stderr.
func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	var text string
	if len(args) > 0 {
		text = l10n.F(msg, args...)
	} else {
		text = l10n.T(msg)
	}

	stamp := time.Now().Format("15:04:05.000")
	var output string
	switch {
	case l.component != "" && l.color:
		output = fmt.Sprintf("%s %s[%s]%s %s", stamp, colorCyan, l.component, colorReset, text)
	case l.component != "":
		output = fmt.Sprintf("%s [%s] %s", stamp, l.component, text)
	default:
		output = stamp + " " + text
	}

	if l.color {
		switch level {
		case ports.LevelDebug:
			output = colorGray + output + colorReset
		case ports.LevelWarn:
			output = colorYellow + output + colorReset
		case ports.LevelError:
			output = colorRed + output + colorReset
		}
	}

	if level >= ports.LevelWarn {
		fmt.Fprintln(l.err, output)
	} else {
		fmt.Fprintln(l.out, output)
	}
}

func newConsoleTo(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, out: out, err: errOut}
}

var _ ports.Logger = (*ConsoleLogger)(nil)
