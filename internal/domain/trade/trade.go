package trade

import (
	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// Trade records a settled exchange between products. Trades are immutable
// once created; the products carry the link back to the trade.
type Trade struct {
	shared.BaseAggregateRoot
	ProductIDs []uuid.UUID
}

// NewTrade creates a trade over the given products. Duplicate ids collapse,
// keeping first-seen order. An empty set is rejected.
func NewTrade(productIDs []uuid.UUID) (*Trade, error) {
	ids := DedupeProductIDs(productIDs)
	if len(ids) == 0 {
		return nil, shared.NewValidationError(shared.CodeInvalidInput, "A trade needs at least one product")
	}

	t := &Trade{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductIDs:        ids,
	}
	t.AddDomainEvent(NewTradeSettledEvent(t))
	return t, nil
}

// DedupeProductIDs returns ids without duplicates or nil ids, in first-seen order
func DedupeProductIDs(productIDs []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	ids := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
