package logging

import (
	"errors"
	"testing"
	"time"

	assets "github.com/goliatone/go-assets"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestLoggerRendersIDsAndKinds(t *testing.T) {
	logger, logs := newObserved(zapcore.DebugLevel)
	id := assets.MustParseID("6f1c8a44-3c55-4a53-9a8e-2f0d3c1b7e10")

	logger.Info("asset cached", "id", id, "kind", assets.KindTexture, "path", "Assets/wood.png")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["id"] != id.String() {
		t.Fatalf("expected id rendered as string, got %#v", fields["id"])
	}
	if fields["kind"] != "Texture" {
		t.Fatalf("expected kind name, got %#v", fields["kind"])
	}
	if fields["path"] != "Assets/wood.png" {
		t.Fatalf("unexpected path field %#v", fields["path"])
	}
}

func TestLoggerWithAddsContext(t *testing.T) {
	logger, logs := newObserved(zapcore.DebugLevel)
	logger.With("component", "importer").Warn("skipped", "path", "a.txt")

	entry := logs.All()[0]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %s", entry.Level)
	}
	if entry.ContextMap()["component"] != "importer" {
		t.Fatalf("expected component field, got %#v", entry.ContextMap())
	}
}

func TestLogQueryLevels(t *testing.T) {
	logger, logs := newObserved(zapcore.DebugLevel)

	logger.LogQuery(assets.QueryLogEvent{Engine: "expr", Expr: "true", Scanned: 3, Matched: 3, Duration: time.Millisecond})
	logger.LogQuery(assets.QueryLogEvent{Engine: "cel", Expr: "1", Err: errors.New("not a bool")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected levels %s %s", entries[0].Level, entries[1].Level)
	}
	if entries[0].ContextMap()["matched"] != int64(3) {
		t.Fatalf("expected matched count, got %#v", entries[0].ContextMap()["matched"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("development", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	logger, err := New("production", "info")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug disabled at info level")
	}
}
