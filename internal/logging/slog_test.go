package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG msg=dbg a=1",
		"level=INFO msg=inf b=2",
		"level=WARN msg=wrn c=3",
		"level=ERROR msg=err d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "gate").Info(context.Background(), "rejected", "status", 403)

	out := buf.String()
	assert.Contains(t, out, "module=gate")
	assert.Contains(t, out, "status=403")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestNewNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Error(context.TODO(), "nothing to see")
}

func TestSlogLogger_RequestID(t *testing.T) {
	log, buf := newTestLogger(t)

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))

	log.With("module", "account_service").Info(ctx, "login rejected", "username", "bob")
	assert.Contains(t, buf.String(), "msg=\"login rejected\" module=account_service username=bob request_id=req-42")

	buf.Reset()
	log.Info(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestSlogLogger_RequestIDLeavesCallerArgs(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := WithRequestID(context.Background(), "req-1")

	args := make([]any, 2, 8)
	args[0], args[1] = "k", "v"
	backing := args[:cap(args)]

	log.Info(ctx, "first", args...)
	log.Info(ctx, "second", args...)

	assert.Nil(t, backing[2], "spare capacity must stay untouched")
	assert.Nil(t, backing[3])
	assert.Equal(t, 2, strings.Count(buf.String(), "request_id=req-1"))
}
