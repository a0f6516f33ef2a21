package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func countTrades(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.TradeModel{}).Count(&n).Error)
	return n
}

func TestGormSettlementRepository_Settle(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*gorm.DB, *GormSettlementRepository, *GormProductRepository, []*catalog.Product) {
		db := setupTestDB(t)
		category := seedCategory(t, db, "Electronics")
		user := seedUser(t, db, "123456789")
		products := seedProducts(t, db, user, category, 3, base)
		return db, NewGormSettlementRepository(db), NewGormProductRepository(db), products
	}

	t.Run("marks every product and links the trade", func(t *testing.T) {
		db, repo, products, seeded := setup(t)

		tr, err := trade.NewTrade([]uuid.UUID{seeded[0].ID, seeded[1].ID})
		require.NoError(t, err)
		require.NoError(t, repo.Settle(ctx, tr))

		for _, p := range seeded[:2] {
			found, err := products.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.True(t, found.IsTraded)
			require.NotNil(t, found.TradeID)
			assert.Equal(t, tr.ID, *found.TradeID)
		}

		untouched, err := products.FindByID(ctx, seeded[2].ID)
		require.NoError(t, err)
		assert.False(t, untouched.IsTraded)
		assert.Nil(t, untouched.TradeID)
		assert.Equal(t, int64(1), countTrades(t, db))
	})

	t.Run("already traded product rolls everything back", func(t *testing.T) {
		db, repo, products, seeded := setup(t)

		first, err := trade.NewTrade([]uuid.UUID{seeded[0].ID})
		require.NoError(t, err)
		require.NoError(t, repo.Settle(ctx, first))

		second, err := trade.NewTrade([]uuid.UUID{seeded[0].ID, seeded[1].ID})
		require.NoError(t, err)
		err = repo.Settle(ctx, second)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrSettlementInconsistent))
		assert.Contains(t, err.Error(), "marked 1 of 2")

		p1, err := products.FindByID(ctx, seeded[0].ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, *p1.TradeID)

		p2, err := products.FindByID(ctx, seeded[1].ID)
		require.NoError(t, err)
		assert.False(t, p2.IsTraded)
		assert.Equal(t, int64(1), countTrades(t, db))
	})

	t.Run("missing product rolls everything back", func(t *testing.T) {
		db, repo, products, seeded := setup(t)

		tr, err := trade.NewTrade([]uuid.UUID{seeded[0].ID, uuid.New()})
		require.NoError(t, err)
		err = repo.Settle(ctx, tr)
		assert.True(t, errors.Is(err, shared.ErrSettlementInconsistent))

		p, err := products.FindByID(ctx, seeded[0].ID)
		require.NoError(t, err)
		assert.False(t, p.IsTraded)
		assert.Equal(t, int64(0), countTrades(t, db))
	})

	t.Run("empty trade is rejected", func(t *testing.T) {
		_, repo, _, _ := setup(t)
		err := repo.Settle(ctx, &trade.Trade{})
		assert.True(t, shared.IsValidation(err))
	})
}
