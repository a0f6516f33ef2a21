package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestActivityLogger_Handle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewActivityLogger(zap.New(core))
	ctx := logger.WithRequestID(context.Background(), "req-1")

	p, err := catalog.NewProduct("iPhone 13", "MacBook", uuid.New(), uuid.New())
	require.NoError(t, err)
	tr, err := trade.NewTrade([]uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, catalog.NewProductListedEvent(p)))
	require.NoError(t, h.Handle(ctx, trade.NewTradeSettledEvent(tr)))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "activity: product listed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "iPhone 13", fields["title"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, "activity: trade settled", entries[1].Message)
	assert.Len(t, entries[1].ContextMap()["product_ids"], 2)
}

func TestActivityLogger_EventTypes(t *testing.T) {
	h := NewActivityLogger(nil)
	assert.ElementsMatch(t,
		[]string{catalog.EventTypeProductListed, trade.EventTypeTradeSettled},
		h.EventTypes())
}
