package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestRequestAndConnIDs(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || ConnIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = WithConnID(ctx, "conn-1")
	ctx = WithRequestID(ctx, "req-1")

	if got := ConnIDFromContext(ctx); got != "conn-1" {
		t.Errorf("ConnIDFromContext() = %q, want %q", got, "conn-1")
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-1")
	}
}

func TestL_EnrichesWithIDs(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	ctx = WithConnID(ctx, "conn-7")
	ctx = WithRequestID(ctx, "req-9")

	L(ctx).Info("handled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["conn_id"] != "conn-7" {
		t.Errorf("conn_id = %v, want conn-7", entry["conn_id"])
	}
	if entry["request_id"] != "req-9" {
		t.Errorf("request_id = %v, want req-9", entry["request_id"])
	}
}
