package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// restoreDefault resets the global logger after a test replaced it.
func restoreDefault(t *testing.T) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })
}

func TestInstrument_JSONWithTraceContext(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	shutdown, err := Instrument(context.Background(), slog.LevelInfo, FormatJSON, WithWriter(&buf))
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	slog.DebugContext(ctx, "hidden")
	slog.InfoContext(ctx, "departures refreshed", "count", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if record["msg"] != "departures refreshed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v", record["trace_id"])
	}
	if record["span_id"] != "00f067aa0ba902b7" {
		t.Errorf("span_id = %v", record["span_id"])
	}
}

func TestInstrument_Text(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	if _, err := Instrument(context.Background(), slog.LevelDebug, FormatText, WithWriter(&buf)); err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	slog.Debug("token ready")
	if !strings.Contains(buf.String(), "msg=\"token ready\"") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestInstrument_OTelStdout(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	shutdown, err := Instrument(context.Background(), slog.LevelWarn, FormatOTel, WithWriter(&buf))
	if err != nil {
		t.Fatalf("Instrument: %v", err)
	}

	slog.Info("below minimum severity")
	slog.Warn("departure fetch failed")

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "departure fetch failed") {
		t.Errorf("expected exported record, got %q", out)
	}
	if strings.Contains(out, "below minimum severity") {
		t.Errorf("record below minimum severity was exported: %q", out)
	}
}

func TestInstrument_UnsupportedFormat(t *testing.T) {
	restoreDefault(t)

	if _, err := Instrument(context.Background(), slog.LevelInfo, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestInstrument_UnsupportedProtocol(t *testing.T) {
	restoreDefault(t)

	_, err := Instrument(context.Background(), slog.LevelInfo, FormatText,
		WithWriter(&bytes.Buffer{}), WithOTLP("http://localhost:4318", "smoke-signals"))
	if err == nil {
		t.Error("expected error for unsupported protocol")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  log.Severity
	}{
		{slog.LevelDebug, log.SeverityDebug},
		{slog.LevelInfo, log.SeverityInfo},
		{slog.LevelWarn, log.SeverityWarn},
		{slog.LevelError, log.SeverityError},
		{slog.LevelError + 4, log.SeverityError},
	}

	for _, tt := range tests {
		if got := severity(tt.level).Severity(); got != tt.want {
			t.Errorf("severity(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestFanout(t *testing.T) {
	var debug, warn bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	logger := slog.New(h).With("stop_area", "9021014001960000")

	logger.Info("only debug handler")
	logger.Error("both handlers")

	if strings.Count(debug.String(), "\n") != 2 {
		t.Errorf("debug handler got %q", debug.String())
	}
	if strings.Count(warn.String(), "\n") != 1 || !strings.Contains(warn.String(), "stop_area=9021014001960000") {
		t.Errorf("warn handler got %q", warn.String())
	}
}
