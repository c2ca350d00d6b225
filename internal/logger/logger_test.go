package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapObjLogsStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Zap{S: zap.New(core).Sugar()}

	log.WarnObj("overpass status check failed", "status_error", map[string]any{"status_code": 503})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected level %v", entries[0].Level)
	}
	if _, ok := entries[0].ContextMap()["status_error"]; !ok {
		t.Fatalf("missing structured field: %v", entries[0].ContextMap())
	}
}

func TestZapObjNilLoggerIsSafe(t *testing.T) {
	Zap{}.InfoObj("noop", "k", 1)
}
