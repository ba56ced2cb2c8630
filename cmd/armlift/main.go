package main

import (
	"log/slog"
	"net/http"
	"os"

	_ "net/http/pprof" // profiling

	"armlift/internal/armlift/cmd"
	"armlift/internal/armlift/log"
)

func main() {
	defer log.OnPanic()
	startProfiler()
	cmd.Execute()
}

// startProfiler serves pprof when ARMLIFT_PPROF names a listen address,
// or the default localhost:6060 when set to "1". Lifting a large .text
// is CPU-bound, so this stays opt-in.
func startProfiler() {
	addr := os.Getenv("ARMLIFT_PPROF")
	if addr == "" {
		return
	}
	if addr == "1" {
		addr = "localhost:6060"
	}
	go func() {
		slog.Info("serving pprof", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			slog.Warn("pprof server stopped", "err", err)
		}
	}()
}
