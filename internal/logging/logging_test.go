package logging

import (
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		verbose bool
		json    bool
		debug   bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, false},
		{true, true, true},
	}
	for _, tt := range tests {
		l, err := New(tt.verbose, tt.json)
		if err != nil {
			t.Fatalf("New(%v, %v) error: %v", tt.verbose, tt.json, err)
		}
		if got := l.Core().Enabled(zap.DebugLevel); got != tt.debug {
			t.Errorf("New(%v, %v) debug enabled = %v, want %v", tt.verbose, tt.json, got, tt.debug)
		}
		if !l.Core().Enabled(zap.WarnLevel) {
			t.Errorf("New(%v, %v) should enable warn", tt.verbose, tt.json)
		}
	}
}

func TestJSONFromEnv(t *testing.T) {
	orig := os.Getenv("PROMPTMD_LOG_FORMAT")
	defer func() {
		if orig == "" {
			os.Unsetenv("PROMPTMD_LOG_FORMAT")
		} else {
			os.Setenv("PROMPTMD_LOG_FORMAT", orig)
		}
	}()

	os.Setenv("PROMPTMD_LOG_FORMAT", "json")
	if !JSONFromEnv() {
		t.Error("JSONFromEnv = false, want true")
	}
	os.Setenv("PROMPTMD_LOG_FORMAT", "console")
	if JSONFromEnv() {
		t.Error("JSONFromEnv = true, want false")
	}
}

func TestNewAt(t *testing.T) {
	l, err := NewAt(zap.InfoLevel, true)
	if err != nil {
		t.Fatalf("NewAt error: %v", err)
	}
	if !l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be enabled")
	}
	if l.Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be disabled")
	}
}
