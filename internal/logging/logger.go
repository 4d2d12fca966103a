// Package logging prints release progress to the terminal and, optionally,
// appends the same lines to a log file so a failed run can be inspected
// after the terminal is gone.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Logger is safe to use as a nil pointer; every method is then a no-op.
type Logger struct {
	out     io.Writer
	file    *os.File
	verbose bool
	now     func() time.Time
}

// New returns a Logger writing to out. A nil out means color.Output.
func New(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = color.Output
	}
	return &Logger{out: out, verbose: verbose, now: time.Now}
}

// Discard returns a Logger that prints nothing.
func Discard() *Logger {
	return New(io.Discard, false)
}

// OpenFile mirrors every line into path, creating parent directories.
func (l *Logger) OpenFile(path string) error {
	if l == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "logging: ensure log dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "logging: open log file")
	}
	l.file = f
	return nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Verbose reports whether debug lines are printed.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// Step prints the banner that opens one release step.
func (l *Logger) Step(n int, title string) {
	l.emit(fmt.Sprintf("\n================ %s %s ================\n", color.BlueString("[%d]", n), title),
		fmt.Sprintf("step %d: %s", n, title))
}

// Banner prints a standalone section header.
func (l *Logger) Banner(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.emit(fmt.Sprintf("\n================ %s ================\n", msg), msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.emit(msg, msg)
}

func (l *Logger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.emit(color.GreenString("%s", msg), msg)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.emit(color.YellowString("%s", msg), "WARN "+msg)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.emit(color.RedString("%s", msg), "ERROR "+msg)
}

// Debugf only prints with verbose output enabled. The log file always
// receives the line.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.verbose {
		l.emit(msg, "DEBUG "+msg)
		return
	}
	l.record("DEBUG " + msg)
}

func (l *Logger) emit(console, plain string) {
	if l == nil {
		return
	}
	fmt.Fprintln(l.out, console)
	l.record(plain)
}

func (l *Logger) record(line string) {
	if l.file == nil {
		return
	}
	line = strings.TrimSpace(line)
	fmt.Fprintf(l.file, "[%s] %s\n", l.now().Format(time.RFC3339), line)
}
