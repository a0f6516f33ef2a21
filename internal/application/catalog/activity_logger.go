// Package catalog holds subscribers reacting to listing and trade activity.
package catalog

import (
	"context"

	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActivityLogger writes listing and trade events to the structured log
type ActivityLogger struct {
	logger *zap.Logger
}

// NewActivityLogger creates a new ActivityLogger
func NewActivityLogger(l *zap.Logger) *ActivityLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ActivityLogger{logger: l}
}

// EventTypes returns the event types this handler is interested in
func (h *ActivityLogger) EventTypes() []string {
	return []string{catalog.EventTypeProductListed, trade.EventTypeTradeSettled}
}

// Handle logs one event
func (h *ActivityLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.WithLogger(ctx, h.logger)

	switch e := event.(type) {
	case *catalog.ProductListedEvent:
		log.Info("activity: product listed",
			zap.String("product_id", e.ProductID.String()),
			zap.String("user_id", e.UserID.String()),
			zap.String("category_id", e.CategoryID.String()),
			zap.String("title", e.Title),
			zap.Time("occurred_at", e.OccurredAt()),
		)
	case *trade.TradeSettledEvent:
		ids := make([]string, len(e.ProductIDs))
		for i, id := range e.ProductIDs {
			ids[i] = id.String()
		}
		log.Info("activity: trade settled",
			zap.String("trade_id", e.TradeID.String()),
			zap.Strings("product_ids", ids),
			zap.Time("occurred_at", e.OccurredAt()),
		)
	default:
		log.Debug("activity: unhandled event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*ActivityLogger)(nil)
