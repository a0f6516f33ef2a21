package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	ID   uuid.UUID            `gorm:"type:uuid;primary_key"`
	Name string               `gorm:"type:varchar(100);not null;uniqueIndex"`
	Type catalog.CategoryType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:   m.ID,
		Name: m.Name,
		Type: m.Type,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.ID = c.ID
	m.Name = c.Name
	m.Type = c.Type
}

// CategoryCountRow is the scan target for categories joined with product counts
type CategoryCountRow struct {
	ID           uuid.UUID
	Name         string
	Type         catalog.CategoryType
	ProductCount int64
}

// ToDomain converts the row to a domain CategoryWithCount.
func (r *CategoryCountRow) ToDomain() catalog.CategoryWithCount {
	return catalog.CategoryWithCount{
		Category: catalog.Category{
			ID:   r.ID,
			Name: r.Name,
			Type: r.Type,
		},
		ProductCount: r.ProductCount,
	}
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key"`
	Title        string         `gorm:"type:text;not null"`
	WantedTrades string         `gorm:"type:text;not null"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	CategoryID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	IsTraded     bool           `gorm:"not null;default:false;index"`
	TradeID      *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt    time.Time      `gorm:"not null"`
	Category     *CategoryModel `gorm:"foreignKey:CategoryID"`
	User         *UserModel     `gorm:"foreignKey:UserID"`
	Trade        *TradeModel    `gorm:"foreignKey:TradeID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.CreatedAt,
			},
		},
		Title:        m.Title,
		WantedTrades: m.WantedTrades,
		UserID:       m.UserID,
		CategoryID:   m.CategoryID,
		IsTraded:     m.IsTraded,
		TradeID:      m.TradeID,
	}
	if m.Category != nil {
		p.Category = m.Category.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.Title = p.Title
	m.WantedTrades = p.WantedTrades
	m.UserID = p.UserID
	m.CategoryID = p.CategoryID
	m.IsTraded = p.IsTraded
	m.TradeID = p.TradeID
	m.CreatedAt = p.CreatedAt
}
