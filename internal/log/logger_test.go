package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})
	l.Info("hello", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected output %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentSavings).Warn("again")
	if got := buf.String(); strings.Count(got, "component=") != 1 || !strings.Contains(got, "component=savings") {
		t.Fatalf("component must appear once, got %q", got)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Component: ComponentApp, Output: &buf})
	l.Info("started")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentApp, Output: &buf}))
	sl.LogMutation(context.Background(), ComponentSavings, OpUpdate, "goal", 3, "Savings Added", NewFields().WithAmount(50000, ""))
	if out := buf.String(); !strings.Contains(out, "entity_id=3") || !strings.Contains(out, `notification="Savings Added"`) ||
		!strings.Contains(out, "amount_minor=50000") || strings.Count(out, "component=") != 1 {
		t.Fatalf("unexpected mutation log %q", out)
	}

	buf.Reset()
	sl.LogRejected(context.Background(), ComponentLedger, "transaction", errors.New("missing amount"))
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "validation_error") {
		t.Fatalf("unexpected rejection log %q", out)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	fallback := New(Config{Component: ComponentApp, Output: &bytes.Buffer{}})
	scoped := New(Config{Component: ComponentHTTP, Output: &buf}).With(FieldRequestID, "req-1")

	cases := []struct {
		name     string
		ctx      context.Context
		fallback *Logger
		want     string
	}{
		{"stored logger wins", NewContext(context.Background(), scoped), fallback, ComponentHTTP},
		{"fallback without one", context.Background(), fallback, ComponentApp},
		{"default without fallback", context.Background(), nil, ComponentApp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromContext(tc.ctx, tc.fallback); got == nil || got.Component() != tc.want {
				t.Fatalf("FromContext() component = %v, want %s", got, tc.want)
			}
		})
	}

	sl := NewStructuredLogger(fallback)
	sl.LogError(NewContext(context.Background(), scoped), "boom", errors.New("disk full"), ComponentStorage, OpUpdate, nil)
	out := buf.String()
	if !strings.Contains(out, "request_id=req-1") || !strings.Contains(out, "component=storage") || strings.Count(out, "component=") != 1 {
		t.Fatalf("request logger should carry the record, got %q", out)
	}
}
