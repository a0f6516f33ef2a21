package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func contextWithValidSpan(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestWithContext(t *testing.T) {
	zapLogger := zap.NewExample()
	ctx := WithContext(context.Background(), zapLogger)
	assert.Same(t, zapLogger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	l.Info("does not panic")
}

func TestRequestIDAndSender(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetSender(ctx))

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithSender(ctx, "123456789")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "123456789", GetSender(ctx))
}

func TestGetTraceID(t *testing.T) {
	t.Run("empty without span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("reads valid span context", func(t *testing.T) {
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(contextWithValidSpan(t)))
	})
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(contextWithValidSpan(t), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithSender(ctx, "987654321")

	L(ctx).Info("dispatched", zap.String("kind", "command"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := fieldMap(logs[0])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "987654321", fields["sender"])
	assert.Equal(t, "command", fields["kind"])
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	WithLogger(context.Background(), zap.New(core)).Warn("plain")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Empty(t, logs[0].Context)
}

func TestContextLogger_With(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithSender(context.Background(), "1")

	child := WithLogger(ctx, zap.New(core)).With(zap.String("component", "wizard"))
	child.Debug("debug")
	child.Error("error")

	logs := recorded.All()
	require.Len(t, logs, 2)
	for _, entry := range logs {
		fields := fieldMap(entry)
		assert.Equal(t, "wizard", fields["component"])
		assert.Equal(t, "1", fields["sender"])
	}
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("nothing")
		cl.With(zap.Int("n", 1)).Info("still nothing")
	})
	assert.NotNil(t, cl.Zap())
}
