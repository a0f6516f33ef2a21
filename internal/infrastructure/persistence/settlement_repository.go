package persistence

import (
	"context"
	"fmt"

	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSettlementRepository implements SettlementRepository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// Settle inserts the trade and flips every listed product to traded in one
// transaction. Only untraded products are updated; if fewer rows change than
// were requested, the whole transaction is rolled back.
func (r *GormSettlementRepository) Settle(ctx context.Context, t *trade.Trade) error {
	if len(t.ProductIDs) == 0 {
		return shared.NewValidationError(shared.CodeInvalidInput, "A trade needs at least one product")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := &models.TradeModel{}
		model.FromDomain(t)
		if err := tx.Create(model).Error; err != nil {
			return shared.WrapStorage("create trade", err)
		}

		result := tx.Model(&models.ProductModel{}).
			Where("id IN ?", t.ProductIDs).
			Where("is_traded = ?", false).
			Updates(map[string]any{
				"is_traded": true,
				"trade_id":  t.ID,
			})
		if result.Error != nil {
			return shared.WrapStorage("mark products traded", result.Error)
		}
		if result.RowsAffected != int64(len(t.ProductIDs)) {
			return fmt.Errorf("%w: marked %d of %d products",
				shared.ErrSettlementInconsistent, result.RowsAffected, len(t.ProductIDs))
		}
		return nil
	})
}

// Ensure GormSettlementRepository implements SettlementRepository
var _ trade.SettlementRepository = (*GormSettlementRepository)(nil)
