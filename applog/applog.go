// Package applog is the engine logger: one file-backed sink per
// severity band (info/warn/error), each driven by
// github.com/charmbracelet/log so every line carries a level, a
// timestamp, and caller info by construction, and the six-level
// taxonomy (TRACE..FATAL) maps onto real levels instead of string
// prefixes.
package applog

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Level is one of the logger's six severity levels.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

func (l Level) charm() charmlog.Level {
	switch l {
	case Trace:
		return charmlog.DebugLevel - 1 // charmbracelet/log has no Trace; one below Debug stands in.
	case Debug:
		return charmlog.DebugLevel
	case Info:
		return charmlog.InfoLevel
	case Warn:
		return charmlog.WarnLevel
	case Error:
		return charmlog.ErrorLevel
	case Fatal:
		return charmlog.FatalLevel
	}
	return charmlog.InfoLevel
}

// Logger routes each call by level: Error and Fatal go to the error and
// info sinks, Warn to the warn and info sinks, and every other level to
// the info sink only; each sink's own minimum level then decides whether
// the line is actually written.
type Logger struct {
	info  *charmlog.Logger
	warn  *charmlog.Logger
	err   *charmlog.Logger
	files []io.Closer
}

// Open creates (or appends to) info.log/warn.log/error.log under dir
// and wraps each in a charmbracelet/log logger with caller reporting
// on.
func Open(dir string) (*Logger, error) {
	info, inf, err := openSinkFile(dir, "info.log", charmlog.InfoLevel)
	if err != nil {
		return nil, err
	}
	warn, wf, err := openSinkFile(dir, "warn.log", charmlog.WarnLevel)
	if err != nil {
		inf.Close()
		return nil, err
	}
	errl, ef, err := openSinkFile(dir, "error.log", charmlog.ErrorLevel)
	if err != nil {
		inf.Close()
		wf.Close()
		return nil, err
	}
	return &Logger{info: info, warn: warn, err: errl, files: []io.Closer{inf, wf, ef}}, nil
}

func openSinkFile(dir, name string, level charmlog.Level) (*charmlog.Logger, io.Closer, error) {
	f, err := os.OpenFile(dir+"/"+name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("applog: open %s: %w", name, err)
	}
	l := charmlog.NewWithOptions(f, charmlog.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           level,
	})
	return l, f, nil
}

// Print logs msg at level to the appropriate sink(s), tagged with
// file/fn/line. Warn and Error also mirror into the info sink so a
// single tail of info.log shows the full timeline.
func (l *Logger) Print(level Level, file, fn string, line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fields := []any{"file", file, "func", fn, "line", line}

	switch {
	case level >= Error:
		l.err.Log(level.charm(), msg, fields...)
		l.info.Log(level.charm(), msg, fields...)
	case level == Warn:
		l.warn.Log(level.charm(), msg, fields...)
		l.info.Log(level.charm(), msg, fields...)
	default:
		l.info.Log(level.charm(), msg, fields...)
	}

	if level == Fatal {
		os.Exit(1)
	}
}

// Close flushes and closes the underlying log files.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.files {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
