package catalog

import (
	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// AggregateTypeProduct is the aggregate type for product events
const AggregateTypeProduct = "Product"

// EventTypeProductListed is raised when a wizard run commits a new product
const EventTypeProductListed = "ProductListed"

// ProductListedEvent is published when a new product is listed
type ProductListedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID `json:"product_id"`
	UserID     uuid.UUID `json:"user_id"`
	CategoryID uuid.UUID `json:"category_id"`
	Title      string    `json:"title"`
}

// NewProductListedEvent creates a new ProductListedEvent
func NewProductListedEvent(product *Product) *ProductListedEvent {
	return &ProductListedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductListed, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		UserID:          product.UserID,
		CategoryID:      product.CategoryID,
		Title:           product.Title,
	}
}
