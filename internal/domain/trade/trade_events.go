package trade

import (
	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// AggregateTypeTrade is the aggregate type for trade events
const AggregateTypeTrade = "Trade"

// EventTypeTradeSettled is raised when a trade has been committed
const EventTypeTradeSettled = "TradeSettled"

// TradeSettledEvent is published after a settlement commits
type TradeSettledEvent struct {
	shared.BaseDomainEvent
	TradeID    uuid.UUID   `json:"trade_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// NewTradeSettledEvent creates a new TradeSettledEvent
func NewTradeSettledEvent(t *Trade) *TradeSettledEvent {
	return &TradeSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTradeSettled, AggregateTypeTrade, t.ID),
		TradeID:         t.ID,
		ProductIDs:      t.ProductIDs,
	}
}
