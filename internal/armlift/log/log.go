// Package log wires the process-wide slog logger for the armlift CLI.
// The cobra layer calls Setup once before any command runs; OnPanic is
// the crash handler deferred at the top of main.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	setupOnce sync.Once
	ready     atomic.Bool
)

// Options selects how the default logger behaves.
type Options struct {
	// Debug lowers the level and adds source locations.
	Debug bool
	// JSON emits machine-readable records, for capturing lift runs
	// from CI.
	JSON bool
}

// Setup installs the default slog logger. Later calls are no-ops, so a
// command and a test harness can both call it safely.
func Setup(o Options) {
	setupOnce.Do(func() {
		hopts := &slog.HandlerOptions{Level: slog.LevelInfo}
		if o.Debug {
			hopts.Level = slog.LevelDebug
			hopts.AddSource = true
		}
		var h slog.Handler
		if o.JSON {
			h = slog.NewJSONHandler(os.Stderr, hopts)
		} else {
			h = slog.NewTextHandler(os.Stderr, hopts)
		}
		slog.SetDefault(slog.New(h).With("tool", "armlift"))
		ready.Store(true)
	})
}

// Ready reports whether Setup has run.
func Ready() bool {
	return ready.Load()
}

// OnPanic recovers a panic, reports it with its stack, and exits
// non-zero. Before Setup has run it falls back to plain stderr so a
// crash during flag parsing is still visible.
func OnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if Ready() {
		slog.Error("panic", "value", r, "stack", string(debug.Stack()))
	} else {
		fmt.Fprintf(os.Stderr, "armlift: panic: %v\n%s", r, debug.Stack())
	}
	os.Exit(2)
}
