package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const chatMeterName = TracerName + "/chat"

// ChatMetrics counts chat events per kind and outcome and records how long
// each one took to handle.
type ChatMetrics struct {
	events   *Counter
	duration *Histogram
}

// NewChatMetrics creates the chat instruments on meter
func NewChatMetrics(meter metric.Meter) (*ChatMetrics, error) {
	events, err := NewCounter(meter, "chat.events", "Chat events handled", "{event}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "chat.event.duration", "Time spent handling one chat event", "s",
		0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5)
	if err != nil {
		return nil, err
	}
	return &ChatMetrics{events: events, duration: duration}, nil
}

// ObserveEvent records one handled event
func (m *ChatMetrics) ObserveEvent(ctx context.Context, kind, outcome string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	}
	m.events.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)
}
