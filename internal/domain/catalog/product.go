package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// Product is an item a user offers for barter together with what they want for it.
// Products are created by a completed listing wizard and only ever change by
// being settled into a trade.
type Product struct {
	shared.BaseAggregateRoot
	Title        string
	WantedTrades string
	UserID       uuid.UUID
	CategoryID   uuid.UUID
	IsTraded     bool
	TradeID      *uuid.UUID

	// Category is populated by reads that join the category row
	Category *Category
}

// NewProduct creates an untraded product. Title and wish are stored verbatim.
func NewProduct(title, wantedTrades string, userID, categoryID uuid.UUID) (*Product, error) {
	if title == "" {
		return nil, shared.NewValidationError(shared.CodeInvalidInput, "Product title cannot be empty")
	}
	if wantedTrades == "" {
		return nil, shared.NewValidationError(shared.CodeInvalidInput, "Wanted trades cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError(shared.CodeInvalidInput, "Product owner is required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError(shared.CodeInvalidInput, "Product category is required")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		WantedTrades:      wantedTrades,
		UserID:            userID,
		CategoryID:        categoryID,
	}
	p.AddDomainEvent(NewProductListedEvent(p))
	return p, nil
}

// CategoryName returns the joined category name, or "" when it was not loaded
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// ListedAt returns the creation time, or nil when unknown
func (p *Product) ListedAt() *time.Time {
	if p.CreatedAt.IsZero() {
		return nil
	}
	t := p.CreatedAt
	return &t
}
