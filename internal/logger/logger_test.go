package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestBuild_LevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn", Component: "gateway"}, &buf)

	zl.Info().Msg("dropped")
	zl.Warn().Msg("kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines want 1: %s", len(lines), buf.String())
	}
	if lines[0]["msg"] != "kept" || lines[0]["component"] != "gateway" {
		t.Fatalf("unexpected line: %v", lines[0])
	}
	if _, ok := lines[0]["timestamp"]; !ok {
		t.Fatalf("missing timestamp field")
	}
}

func TestFromContext_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithNetwork(ctx, "IU")
	ctx = WithComponent(ctx, "")
	FromContext(ctx, &zl).Info().Msg("x")

	got := decodeLines(t, &buf)[0]
	if got["request_id"] != "req-1" || got["network"] != "IU" {
		t.Fatalf("missing context fields: %v", got)
	}
	if _, ok := got["component"]; ok {
		t.Fatalf("empty component should not be set")
	}
	if RequestID(ctx) != "req-1" {
		t.Fatalf("RequestID=%q", RequestID(ctx))
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if len(RequestID(ctx)) != 16 {
		t.Fatalf("generated id %q should be 16 hex chars", RequestID(ctx))
	}
}

func TestNewSlog_BridgesAttrsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "info"}, &buf)
	sl := NewSlog(&zl).With("service", "station").WithGroup("req")

	sl.Debug("hidden")
	sl.Error("upstream failed", "status", 503, "err", errors.New("boom"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines want 1: %s", len(lines), buf.String())
	}
	l := lines[0]
	if l["level"] != "error" || l["service"] != "station" {
		t.Fatalf("unexpected line: %v", l)
	}
	if l["req.status"] != float64(503) || l["req.err"] != "boom" {
		t.Fatalf("grouped attrs missing: %v", l)
	}
}
