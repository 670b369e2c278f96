package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 16)
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: aw,
		format: format,
	})
	emit(slog.New(h))
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "counter"), slog.LevelInfo, "counter.applied",
			slog.String("status", "OK"),
			slog.String("mode", "increment"),
		)
	})

	tokens := strings.Split(line, " ")
	require.GreaterOrEqual(t, len(tokens), 6, line)
	for i, prefix := range []string{"ts=", "level=INFO", "component=counter", "event=counter.applied", "status=ok", "rid=rid-123"} {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
	assert.Contains(t, line, "update_id=42")
	assert.Contains(t, line, "mode=increment")
}

func TestStructuredHandlerJSON(t *testing.T) {
	ctx := WithHandler(WithRID(Background(), "12:34:56"), "callback.counter")
	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		l.With("component", "tg").LogAttrs(ctx, slog.LevelError, "handler.error",
			slog.String("err", "boom"),
			slog.Duration("duration", 1500*time.Microsecond),
			slog.Group("breaker", slog.String("state", "open")),
		)
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "handler.error", got["event"])
	assert.Equal(t, CompactRID("12:34:56"), got["rid"])
	assert.Equal(t, "12:34:56", got["rid_full"])
	assert.Equal(t, "callback.counter", got["handler"])
	assert.Equal(t, float64(2), got["duration_ms"])
	assert.Equal(t, "open", got["breaker.state"])
	assert.Contains(t, got, "ts_unix_nano")
	assert.True(t, strings.HasPrefix(line, `{"ts":`))
}

func TestStructuredHandlerKVOmitsRIDFull(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.InfoContext(WithRID(Background(), "123:456:789"), "rid.test")
	})
	assert.Contains(t, line, "rid="+CompactRID("123:456:789"))
	assert.NotContains(t, line, "rid_full=")
	assert.Contains(t, line, "component=app")
}

func TestStructuredHandlerQuotesAndPrunes(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("label",
			slog.String("payload", `Water = 3`),
			slog.String("empty", ""),
			slog.String("outcome", "weird"),
		)
	})
	assert.Contains(t, line, `payload="Water = 3"`)
	assert.NotContains(t, line, "empty=")
	assert.NotContains(t, line, "outcome=")
}

func TestStructuredHandlerLevel(t *testing.T) {
	h := newStructuredHandler(handlerConfig{level: slog.LevelWarn})
	assert.False(t, h.Enabled(Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(Background(), slog.LevelError))
}

func TestAsyncWriterAfterClose(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1)
	require.NoError(t, aw.Write([]byte("a\n")))
	require.NoError(t, aw.Close())
	require.NoError(t, aw.Close())
	assert.ErrorIs(t, aw.Write([]byte("b\n")), errWriterClosed)
	assert.Equal(t, "a\n", buf.String())
}
