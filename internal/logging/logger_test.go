package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ARMLIFT_LOG_LEVEL", "")
	t.Setenv("ARMLIFT_LOG_FORMAT", "")
	t.Setenv("ARMLIFT_LOG_FILE", "")
	f := FromEnv()
	if f.level != log.InfoLevel {
		t.Errorf("default level = %v, want info", f.level)
	}
	if f.Debugging() {
		t.Error("default factory should not report debugging")
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close without file: %v", err)
	}
}

func TestFromEnvDebug(t *testing.T) {
	t.Setenv("ARMLIFT_LOG_LEVEL", "debug")
	f := FromEnv()
	if !f.Debugging() {
		t.Error("debug level should report debugging")
	}
}

func TestComponentTagging(t *testing.T) {
	t.Setenv("ARMLIFT_LOG_LEVEL", "")
	t.Setenv("ARMLIFT_LOG_FORMAT", "logfmt")
	f := FromEnv()
	lg := f.Component("decode")
	var buf bytes.Buffer
	lg.SetOutput(&buf)
	lg.Info("stream done", "count", 3)
	out := buf.String()
	if !strings.Contains(out, "component=decode") {
		t.Errorf("output %q should carry the component field", out)
	}
	if !strings.Contains(out, "stream done") {
		t.Errorf("output %q should carry the message", out)
	}
}

func TestInstructionScope(t *testing.T) {
	t.Setenv("ARMLIFT_LOG_FORMAT", "logfmt")
	f := FromEnv()
	lg := f.Component("lift")
	var buf bytes.Buffer
	lg.SetOutput(&buf)
	Instruction(lg, 0x8000, "mov r0, #5").Warn("unsupported encoding")
	out := buf.String()
	if !strings.Contains(out, "va=0x8000") {
		t.Errorf("output %q should carry the address", out)
	}
	if !strings.Contains(out, "mov r0") {
		t.Errorf("output %q should carry the disassembly", out)
	}
}

func TestLogFile(t *testing.T) {
	path := t.TempDir() + "/armlift.log"
	t.Setenv("ARMLIFT_LOG_FILE", path)
	f := FromEnv()
	if f.closer == nil {
		t.Fatal("factory should hold the opened log file")
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
