package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SettlementService records trades between listed products
type SettlementService struct {
	repo   trade.SettlementRepository
	events shared.EventPublisher
	logger *zap.Logger
}

// NewSettlementService creates a new SettlementService. events may be nil.
func NewSettlementService(repo trade.SettlementRepository, events shared.EventPublisher, logger *zap.Logger) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{repo: repo, events: events, logger: logger}
}

// Settle creates a trade over the given products and marks each of them as
// traded, all or nothing. Duplicate ids count once.
func (s *SettlementService) Settle(ctx context.Context, productIDs []uuid.UUID) (*trade.Trade, error) {
	ctx, span := telemetry.StartSpan(ctx, "trade.settle",
		telemetry.WithAttribute(telemetry.AttrItemCount, len(productIDs)),
	)
	defer span.End()

	t, err := trade.NewTrade(productIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "trade.id", t.ID.String(), telemetry.AttrProductIDs, uuidStrings(t.ProductIDs))

	if err := s.repo.Settle(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrSettlementInconsistent) {
			s.logger.Error("CRITICAL: trade settlement rejected, products missing or already traded",
				zap.String("trade_id", t.ID.String()),
				zap.Int("products", len(t.ProductIDs)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, t.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish trade events", zap.Error(err))
		}
	}
	t.ClearDomainEvents()

	s.logger.Info("trade settled",
		zap.String("trade_id", t.ID.String()),
		zap.Int("products", len(t.ProductIDs)),
	)
	telemetry.SetOK(span)
	return t, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
