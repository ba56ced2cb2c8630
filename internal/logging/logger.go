// Package logging builds the charm loggers used across the armlift
// commands. Every subsystem (decode, lift, cfg) gets its own
// component-tagged logger from one Factory, so a lift run over a large
// binary can be filtered per stage. Level, format, and destination are
// resolved once from the environment:
//
//	ARMLIFT_LOG_LEVEL   debug, info, warn, error (default info)
//	ARMLIFT_LOG_FORMAT  text, logfmt, json (default text)
//	ARMLIFT_LOG_FILE    append to this path instead of stderr
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Factory hands out component loggers sharing one destination and
// configuration.
type Factory struct {
	level     log.Level
	formatter log.Formatter
	caller    bool
	out       io.Writer
	closer    io.Closer
}

// FromEnv resolves the environment once and returns a ready factory.
// An unwritable ARMLIFT_LOG_FILE silently falls back to stderr; losing
// diagnostics is better than refusing to lift.
func FromEnv() *Factory {
	f := &Factory{
		level:     log.InfoLevel,
		formatter: log.TextFormatter,
		out:       os.Stderr,
	}
	switch os.Getenv("ARMLIFT_LOG_LEVEL") {
	case "debug":
		f.level = log.DebugLevel
		f.caller = true
	case "warn":
		f.level = log.WarnLevel
	case "error":
		f.level = log.ErrorLevel
	}
	switch os.Getenv("ARMLIFT_LOG_FORMAT") {
	case "json":
		f.formatter = log.JSONFormatter
	case "logfmt":
		f.formatter = log.LogfmtFormatter
	}
	if path := os.Getenv("ARMLIFT_LOG_FILE"); path != "" {
		if file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644); err == nil {
			f.out = file
			f.closer = file
		}
	}
	return f
}

// Component returns a logger tagged with the given subsystem name.
func (f *Factory) Component(name string) *log.Logger {
	lg := log.NewWithOptions(f.out, log.Options{
		ReportTimestamp: true,
		ReportCaller:    f.caller,
		TimeFormat:      time.Kitchen,
		Level:           f.level,
		Prefix:          "armlift",
		Formatter:       f.formatter,
	})
	return lg.With("component", name)
}

// Close releases the log file, if one was opened.
func (f *Factory) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Debugging reports whether debug output was requested; callers use it
// to skip building expensive per-instruction context.
func (f *Factory) Debugging() bool {
	return f.level <= log.DebugLevel
}

// Instruction scopes a logger to one decoded instruction so every
// message about it carries the address and disassembly text.
func Instruction(lg *log.Logger, va uint64, text string) *log.Logger {
	return lg.With("va", fmt.Sprintf("%#x", va), "disasm", text)
}
