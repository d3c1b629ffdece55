package logger

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	if len(tokens) < 6 {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	log := slog.New(handler).With("component", "service.test")
	LogEvent(ctx, log, slog.LevelError, "service.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "TEST_FAIL"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.test"`, `"event":"service.failed"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)
	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	rawRID := "12:34:56"
	ctx := WithRID(context.Background(), rawRID)
	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano to be present in JSON output, got %s", line)
	}
}

func TestStructuredHandlerOrderIDFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: formatKV,
	})
	ctx := WithOrderID(context.Background(), "ORD-20260301-0001-abcd1234")
	LogEvent(ctx, slog.New(handler).With("component", "service.orders"), slog.LevelInfo, "order.transition",
		slog.String("status", "ok"),
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "order_id=ORD-20260301-0001-abcd1234") {
		t.Fatalf("expected order_id from context, got %s", line)
	}
	if OrderIDFrom(WithOrderID(context.Background(), "")) != "" {
		t.Fatal("empty order id must not be stored")
	}
}

func TestStructuredHandlerRoutesErrorsToErrorSink(t *testing.T) {
	all := &bytes.Buffer{}
	errs := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{all}, 1024)
	aw.addSink(errs, slog.LevelError)
	log := slog.New(newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: formatKV,
	}))

	LogEvent(context.Background(), log, slog.LevelInfo, "order.create", slog.String("status", "ok"))
	LogEvent(context.Background(), log, slog.LevelError, "order.persist", slog.String("status", "error"))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := strings.Count(all.String(), "\n"); got != 2 {
		t.Fatalf("expected 2 lines in main sink, got %d: %s", got, all.String())
	}
	lines := strings.TrimSpace(errs.String())
	if strings.Count(lines, "\n") != 0 || !strings.Contains(lines, "event=order.persist") {
		t.Fatalf("expected only the error line in error sink, got %s", lines)
	}
	if !strings.Contains(lines, "status=error") {
		t.Fatalf("expected status=error, got %s", lines)
	}
}

func TestStructuredHandlerRedactsCustomerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	log := slog.New(newStructuredHandler(handlerConfig{writer: aw, format: formatKV}))

	LogEvent(context.Background(), log, slog.LevelInfo, "checkout.done",
		slog.String("phone", "+1 555 0199"),
		slog.String("address", "12 Baker Street"),
		slog.String("customer_name", "Ann Lee"),
		slog.Any("total", decimal.RequireFromString("12.5")),
		slog.Duration("wait", 1500*time.Millisecond),
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := buf.String()
	for _, leaked := range []string{"Baker", "Ann", "0199"} {
		if strings.Contains(line, leaked) {
			t.Fatalf("line leaks %q: %s", leaked, line)
		}
	}
	for _, want := range []string{"phone=******99", `address=[redacted]`, "total=12.50", "wait_ms=1500"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line missing %q: %s", want, line)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"+1 555 0100": "******00",
		"12":          redacted,
		"":            redacted,
	}
	for in, want := range cases {
		if got := maskPhone(in); got != want {
			t.Fatalf("maskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
