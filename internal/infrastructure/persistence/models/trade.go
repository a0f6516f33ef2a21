package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/trade"
)

// TradeModel is the persistence model for the Trade domain entity.
// Product membership lives on products.trade_id.
type TradeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TradeModel) TableName() string {
	return "trades"
}

// FromDomain populates the persistence model from a domain Trade entity.
func (m *TradeModel) FromDomain(t *trade.Trade) {
	m.ID = t.ID
	m.CreatedAt = t.CreatedAt
}
