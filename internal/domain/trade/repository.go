package trade

import (
	"context"
)

// SettlementRepository persists trades
type SettlementRepository interface {
	// Settle inserts the trade and marks every product in it as traded,
	// atomically. If any product is missing or already traded nothing is
	// written and shared.ErrSettlementInconsistent is returned.
	Settle(ctx context.Context, t *Trade) error
}
