package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
)

func TestSlowQueryCallback(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	run := func(start time.Time, dbErr error) sdktrace.ReadOnlySpan {
		ctx, span := tp.Tracer("test").Start(context.Background(), "gorm.query")
		ctx = context.WithValue(ctx, queryStartKey{}, start)
		db := &gorm.DB{
			Config:    &gorm.Config{},
			Error:     dbErr,
			Statement: &gorm.Statement{Context: ctx, Table: "products", RowsAffected: 3},
		}
		slowQueryCallback(100 * time.Millisecond)(db)
		span.End()
		ended := sr.Ended()
		return ended[len(ended)-1]
	}

	t.Run("slow failing query", func(t *testing.T) {
		s := run(time.Now().Add(-time.Second), errors.New("deadlock detected"))

		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range s.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		assert.Equal(t, "products", attrs["db.sql.table"].AsString())
		assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
		assert.True(t, attrs["db.slow_query"].AsBool())
		assert.Equal(t, codes.Error, s.Status().Code)
	})

	t.Run("fast lookup miss is not an error", func(t *testing.T) {
		s := run(time.Now(), gorm.ErrRecordNotFound)

		for _, kv := range s.Attributes() {
			require.NotEqual(t, attribute.Key("db.slow_query"), kv.Key)
		}
		assert.Equal(t, codes.Unset, s.Status().Code)
	})

	t.Run("no context is ignored", func(t *testing.T) {
		db := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{}}
		assert.NotPanics(t, func() { slowQueryCallback(time.Second)(db) })
	})
}
