package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/trade"
)

// SettleTradeRequest asks for the listed products to be traded together
type SettleTradeRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1,dive,required"`
}

// TradeResponse represents a settled trade in API responses
type TradeResponse struct {
	ID         uuid.UUID   `json:"id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ToTradeResponse converts a domain Trade to a response
func ToTradeResponse(t *trade.Trade) TradeResponse {
	return TradeResponse{
		ID:         t.ID,
		ProductIDs: t.ProductIDs,
		CreatedAt:  t.CreatedAt,
	}
}
