package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/domain/shared"
)

func TestNewTrade(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	t.Run("creates trade over distinct products", func(t *testing.T) {
		tr, err := NewTrade([]uuid.UUID{p1, p2})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tr.ID)
		assert.Equal(t, []uuid.UUID{p1, p2}, tr.ProductIDs)
	})

	t.Run("collapses duplicates", func(t *testing.T) {
		tr, err := NewTrade([]uuid.UUID{p1, p2, p1, p2, p1})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{p1, p2}, tr.ProductIDs)
	})

	t.Run("publishes TradeSettled event", func(t *testing.T) {
		tr, err := NewTrade([]uuid.UUID{p1})
		require.NoError(t, err)

		events := tr.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*TradeSettledEvent)
		require.True(t, ok)
		assert.Equal(t, tr.ID, event.TradeID)
		assert.Equal(t, tr.ID, event.AggregateID())
		assert.Equal(t, []uuid.UUID{p1}, event.ProductIDs)
	})

	t.Run("fails with empty set", func(t *testing.T) {
		_, err := NewTrade(nil)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("fails when only nil ids are given", func(t *testing.T) {
		_, err := NewTrade([]uuid.UUID{uuid.Nil, uuid.Nil})
		require.Error(t, err)
	})
}
