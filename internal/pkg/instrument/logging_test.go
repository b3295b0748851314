package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
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
			t.Fatalf("invalid json %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerMasksFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, logOptions{level: slog.LevelInfo, service: "gomfa", mask: []string{"otp_code", " Secret ", ""}})

	logger.InfoContext(context.Background(), "otp email sent",
		"otp_code", "482913",
		"recipient", "user@example.com",
		"payload", `{"secret":"JBSWY3DPEHPK3PXP","digits":6}`,
		slog.Group("totp", slog.String("secret", "JBSWY3DPEHPK3PXP")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	rec := lines[0]

	if rec["otp_code"] != "***" {
		t.Errorf("otp_code = %v", rec["otp_code"])
	}
	if rec["recipient"] != "user@example.com" {
		t.Errorf("recipient = %v", rec["recipient"])
	}
	if strings.Contains(buf.String(), "JBSWY3DPEHPK3PXP") {
		t.Errorf("secret leaked: %s", buf.String())
	}
	if rec["service"] != "gomfa" || rec["severity"] != "INFO" || rec["ts"] == nil {
		t.Errorf("record = %v", rec)
	}
}

func TestLoggerCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, logOptions{level: slog.LevelInfo}).With("component", "test")

	ctx := SetCorrelationID(context.Background(), "0192f6c4-8d1e-7c55-a3a5-3b2f4e1d9c01")
	logger.InfoContext(ctx, "with id")
	logger.InfoContext(context.Background(), "without id")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0]["_cID"] != "0192f6c4-8d1e-7c55-a3a5-3b2f4e1d9c01" {
		t.Errorf("first record _cID = %v", lines[0]["_cID"])
	}
	if _, ok := lines[1]["_cID"]; ok {
		t.Errorf("second record has _cID: %v", lines[1])
	}
	if lines[0]["component"] != "test" {
		t.Errorf("component attr lost: %v", lines[0])
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, logOptions{level: ParseLevel("warn")})

	logger.Info("dropped")
	logger.Warn("kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["msg"] != "kept" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewDisabledIsNoop(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ins, err := New(context.Background(), &Config{LogWriter: &buf, ServiceName: "gomfa"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ins.Shutdown(context.Background())

	_, span := ins.Tracer("test").Start(context.Background(), "span")
	span.End()
	if span.SpanContext().IsValid() {
		t.Error("noop tracer produced a valid span context")
	}

	slog.Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("default logger not configured: %q", buf.String())
	}
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, logOptions{level: slog.LevelInfo, format: "TEXT", mask: []string{"token"}}).
		With("token", "eyJhbGciOiJIUzUxMiJ9")

	logger.Info("token issued", "factor", "totp")

	out := buf.String()
	if !strings.Contains(out, "msg=\"token issued\"") || !strings.Contains(out, "factor=totp") {
		t.Errorf("text output = %q", out)
	}
	if strings.Contains(out, "eyJhbGciOiJIUzUxMiJ9") || !strings.Contains(out, "token=***") {
		t.Errorf("token not masked: %q", out)
	}
}

func TestNewMasker(t *testing.T) {
	m := newMasker([]string{" OTP_Code ", "", "secret"})
	if len(m) != 2 || !m.hit("otp_code") || !m.hit("SECRET") || m.hit("recipient") {
		t.Errorf("masker = %v", m)
	}
}
