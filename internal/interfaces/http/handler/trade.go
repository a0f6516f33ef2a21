package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/tradepost/backend/internal/application/trade"
	"github.com/tradepost/backend/internal/domain/trade"
)

// TradeSettler settles trades
type TradeSettler interface {
	Settle(ctx context.Context, productIDs []uuid.UUID) (*trade.Trade, error)
}

// TradeHandler handles trade settlement
type TradeHandler struct {
	BaseHandler
	trades TradeSettler
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(trades TradeSettler) *TradeHandler {
	return &TradeHandler{trades: trades}
}

// Settle godoc
// @ID           settleTrade
// @Summary      Settle a trade
// @Description  Creates a trade and marks every listed product as traded, all or nothing. Fails with 409 when a product is already traded or missing.
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.SettleTradeRequest true "Products to trade"
// @Success      201 {object} APIResponse[tradeapp.TradeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /trades [post]
func (h *TradeHandler) Settle(c *gin.Context) {
	var req tradeapp.SettleTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	t, err := h.trades.Settle(c.Request.Context(), req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tradeapp.ToTradeResponse(t))
}
