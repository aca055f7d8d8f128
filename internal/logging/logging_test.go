package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestStartSpanPropagatesTrace(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := WithLogger(context.Background(), base)

	ctx, parent := StartSpan(ctx, "login")
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		t.Fatal("expected trace id on context")
	}
	parentID := SpanIDFromContext(ctx)

	child, span := StartSpan(ctx, "fetch profile")
	if TraceIDFromContext(child) != traceID {
		t.Fatal("child span should share the trace id")
	}
	if SpanIDFromContext(child) == parentID {
		t.Fatal("child span should have its own id")
	}
	span.Fail(errors.New("boom"))
	span.End()
	parent.End()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines got %d", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "span failed" || entry["parent_span_id"] != parentID || entry["trace_id"] != traceID {
		t.Fatalf("unexpected child span entry %v", entry)
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = With(ctx, "uid", "uid-1")
	FromContext(ctx).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["uid"] != "uid-1" {
		t.Fatalf("expected uid attribute, got %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug {
		t.Fatal("expected debug level")
	}
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Fatal("expected warn level")
	}
	if ParseLevel("chatty") != slog.LevelInfo {
		t.Fatal("expected info fallback")
	}
}
