package log

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithLogger_RoundTrip(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	S(ctx).Debugw("hello", "k", "v")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	if got := logs.All()[0].Message; got != "hello" {
		t.Errorf("message = %q, want %q", got, "hello")
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = With(ctx, Provider("zonomi", "example.com")...)

	L(ctx).Info("op")

	fields := logs.All()[0].ContextMap()
	if fields["provider"] != "zonomi" || fields["domain"] != "example.com" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestL_FallsBackThroughWrappedContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	type key struct{}
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = context.WithValue(ctx, key{}, "x")

	L(ctx).Info("wrapped")

	if logs.Len() != 1 {
		t.Fatalf("expected logger to be found through a wrapping context")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
