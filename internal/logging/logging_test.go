package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewBuildsLogger(t *testing.T) {
	for _, mode := range []string{"debug", "release"} {
		logger, err := New("warn", mode)
		if err != nil {
			t.Fatalf("New(%s) returned error: %v", mode, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("info should be disabled at warn level in %s mode", mode)
		}
	}
}
